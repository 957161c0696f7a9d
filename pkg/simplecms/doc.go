// Package simplecms provides a reusable library for managing hierarchical,
// multilingual web content: pages, localized titles, placeholder regions,
// typed content plugins, permission grants, and draft/publish workflows.
//
// It exposes a single Service interface that orchestrates page and title
// creation, plugin placement, permission granting, publication and language
// copying over a pluggable Repository. Implementations of repositories
// (memory, Postgres) are provided under subpackages, as are the registries
// pages are validated against: templates, apphooks, plugin types and
// navigation extenders.
//
// # Draft/public pairing
//
// Every page starts as a draft. Publishing a language creates or refreshes
// the paired public page and copies that language's title and placeholder
// content across. Draft and public rows reference each other, so either
// side resolves back to the working draft.
//
// # Authorship
//
// Operations that record authorship take the acting user explicitly, either
// on the request or through WithActor on the context. There is no ambient
// process-global user state.
package simplecms
