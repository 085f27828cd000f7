// Package services defines the [CatalogProvider] interface for music catalogs and implements it for Plex Media Server.
//
// # CatalogProvider Interface
//
// The curation pipeline consumes the catalog through a single abstraction so the
// core stages never touch HTTP. The provider supplies candidate tracks from
// listening history, last-play timestamps, single-track snapshots and the
// server-computed sonic nearest-neighbor lists.
//
// # Plex Implementation
//
// [PlexService] authenticates with a static token sent via the X-Plex-Token
// header and requests the JSON rendering of the media container envelope.
//
// Track snapshots fold in album metadata (album artist, subtype, labels,
// collections) and the artist record title. Album and artist lookups are
// memoized per service instance; create one PlexService per curation run so
// the memo stays run-scoped.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingToken] : no catalog token configured
//   - [shared.ErrCatalogUnavailable] : server unreachable
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrTrackNotFound] : track ID not found
//
// Per-track failures inside batch operations are skipped, never propagated:
// a missing album or a single unfetchable track must not fail a curation run.
package services
