// Package sqlinline holds every SQL statement the service executes. Each
// query starts with a --sql marker consumed by infra.SQLRunner for log
// correlation.
package sqlinline

const QInsertCatalogue = `--sql 7c1f4a2e-9b3d-4f6a-8e21-0d5c9b7a1e43
insert into catalogues (slug, status, title, subtitle, currency, theme, language, created_by, source, services, logo, legal, partners, configuration, contact)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
on conflict (slug) do nothing;
`

const QSelectCatalogueBySlug = `--sql 3e8b2c91-5f4a-4d7e-b6a0-9c2d1e8f5a74
select slug, status, title, subtitle, currency, theme, language, created_by, source, services, logo, legal, partners, configuration, contact, created_at, updated_at
from catalogues
where slug = $1;
`

const QSelectCatalogueStatus = `--sql 9a4d7e21-3b8f-4c5a-a1e9-6f0b2d8c4e17
select status
from catalogues
where slug = $1;
`

const QUpdateCatalogueServices = `--sql 5b2e8f43-7a1c-4d9b-9e60-3c8a5f2b7d91
update catalogues
set services = $3,
    status = $4,
    updated_at = now()
where slug = $1
  and status = $2;
`

const QSelectCataloguesByNames = `--sql 1d6c3a85-2e9b-4f70-b4d2-8a5e0c7f3b96
select slug, status, title, subtitle, currency, theme, language, created_by, source, services, logo, legal, partners, configuration, contact, created_at, updated_at
from catalogues
where slug = any($1)
order by created_at asc;
`

const QInsertUsage = `--sql 8f3b5d27-6c4e-4a91-85f0-2b9d7e1a6c38
insert into usage_records (user_id, catalogue, source)
values ($1, $2, $3);
`

const QEnqueueEnrichmentJob = `--sql 4a9e2c76-1d8b-4e53-97a4-5f0c3b8d2e61
insert into enrichment_jobs (id, slug, user_id, services, status)
values ($1, $2, $3, $4, 'queued');
`

const QClaimEnrichmentJob = `--sql 6e1d8b39-4f2a-4c87-b0e5-7a3c9d5f1b28
with next_job as (
    select id
    from enrichment_jobs
    where status = 'queued'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update enrichment_jobs
    set status = 'running', updated_at = now()
    where id in (select id from next_job)
    returning id, slug, user_id, services
)
select * from claimed;
`

const QUpdateEnrichmentJobStatus = `--sql 2c7a4f18-9e5d-4b36-a8c1-0d6f3e9b5a72
update enrichment_jobs
set status = $2,
    error_message = $3,
    updated_at = now()
where id = $1;
`
