// Package board computes the dashboard view of a flux list: search, state
// badges, the role-gated action menu, pagination and overview cards.
//
// Every function here is pure. Mutations go through service.MutationGateway
// and the caller re-fetches afterwards.
package board
