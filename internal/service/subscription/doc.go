// Package subscription implements the subscriber lifecycle: intake of new
// subscribers and the pending_confirmation → confirmed state transition
// driven by a single-use confirmation token.
//
// The service layer contains all business logic and depends on the
// Repository interface defined in this package; it should never import
// from api/. Repository implementations live in repository/postgres/.
package subscription
