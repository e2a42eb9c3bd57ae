package sqlinline

const QSelectIntegrationToken = `--sql 95f0f47e-0572-4342-b46a-561059f8029a
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql b87d23a9-4607-4b46-a831-cfff5edc9595
insert into integration_tokens(provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider)
do update set token = excluded.token, properties = excluded.properties, updated_at = now();
`
