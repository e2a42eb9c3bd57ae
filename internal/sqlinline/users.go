package sqlinline

const QInsertUser = `--sql f1a2316d-21a1-45b5-b1f2-9e44e33d24af
insert into users(id, name, email, password_hash, country, created_at, updated_at)
values (gen_random_uuid(), $1::text, lower($2::text), $3::text, nullif($4::text, ''), now(), now())
returning id, created_at, updated_at;
`

const QSelectUserByEmail = `--sql 64a6bdfc-7a6d-4843-bb64-4607c12127b7
select id, name, email, password_hash, coalesce(country, ''), created_at, updated_at
from users
where email = lower($1::text)
limit 1;
`

const QSelectUserByID = `--sql 4c7504a8-c977-4854-995d-e4b3b502d7c4
select id, name, email, password_hash, coalesce(country, ''), created_at, updated_at
from users
where id = $1::uuid
limit 1;
`
