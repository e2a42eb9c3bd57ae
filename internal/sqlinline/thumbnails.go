package sqlinline

const QInsertThumbnail = `--sql ef3db0c8-a3a8-421b-b7c6-eea91dcc2b10
insert into thumbnails(
  id,
  user_id,
  title,
  user_prompt,
  style,
  aspect_ratio,
  color_scheme,
  text_overlay,
  status,
  created_at,
  updated_at
) values (
  gen_random_uuid(),
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  $7::boolean,
  'pending',
  now(),
  now()
) returning id, created_at, updated_at;
`

const QSelectThumbnailForUser = `--sql f7453dec-f8ca-4d15-9e08-199cdc5fb113
select id, user_id, title, user_prompt, coalesce(refined_prompt, ''), style, aspect_ratio,
       color_scheme, text_overlay, coalesce(image_url, ''), status, coalesce(error_message, ''),
       created_at, updated_at
from thumbnails
where id = $1::uuid and user_id = $2::uuid
limit 1;
`

const QListThumbnailsByUser = `--sql ebe533b2-fc61-43ae-a450-1252e84b787d
select id, user_id, title, user_prompt, coalesce(refined_prompt, ''), style, aspect_ratio,
       color_scheme, text_overlay, coalesce(image_url, ''), status, coalesce(error_message, ''),
       created_at, updated_at
from thumbnails
where user_id = $1::uuid
order by created_at desc;
`

// Terminal transitions only apply to rows still pending, so a record can
// never leave complete or failed again.
const QMarkThumbnailComplete = `--sql 6023418b-f036-48b3-a5f5-989cb74ef498
update thumbnails
set status = 'complete',
    refined_prompt = $3::text,
    image_url = $4::text,
    updated_at = now()
where id = $1::uuid and user_id = $2::uuid and status = 'pending'
returning updated_at;
`

const QMarkThumbnailFailed = `--sql b44e5f2a-77e6-44ca-bff3-7d4e6c02c7f9
update thumbnails
set status = 'failed',
    refined_prompt = coalesce(nullif($3::text, ''), refined_prompt),
    error_message = $4::text,
    updated_at = now()
where id = $1::uuid and user_id = $2::uuid and status = 'pending'
returning updated_at;
`

const QDeleteThumbnailForUser = `--sql bce9d32e-d5ea-4597-a5ac-7b5a57d184fc
delete from thumbnails
where id = $1::uuid and user_id = $2::uuid;
`
