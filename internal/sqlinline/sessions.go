package sqlinline

const QInsertSession = `--sql 958753e5-76d6-48b9-807b-d726271b09a9
insert into sessions(token, user_id, expires_at, created_at)
values ($1::uuid, $2::uuid, $3::timestamptz, now());
`

const QSelectSession = `--sql 0b33afd9-8bec-42c5-9d18-5a30c10cc339
select token, user_id, expires_at, created_at
from sessions
where token = $1::uuid and expires_at > now()
limit 1;
`

const QDeleteSession = `--sql 1da7a33f-578e-4652-baf4-9d58a61b39b0
delete from sessions where token = $1::uuid;
`

const QDeleteExpiredSessions = `--sql a27624a5-8d9a-48e2-a631-40bef52be406
delete from sessions where expires_at <= now();
`
