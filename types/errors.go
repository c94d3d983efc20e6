package types

import "errors"

var (
	// ErrNotConnected the store has not been connected yet
	ErrNotConnected = errors.New("store is not connected")

	// ErrCollectionNotFound the named example collection does not exist
	ErrCollectionNotFound = errors.New("collection does not exist")

	// ErrRetrieval example retrieval failed and the question cannot be grounded
	ErrRetrieval = errors.New("example retrieval failed")

	// ErrWriteQuery the query contains a clause that would modify the graph
	ErrWriteQuery = errors.New("write queries are not allowed")
)
