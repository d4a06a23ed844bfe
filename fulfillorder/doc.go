// Package fulfillorder implements the fulfill-order use case: turning a
// buyer's profile and a cart of requested books into one committed order.
//
// BuildCommand validates the request input before any store access;
// CommandHandler executes the fulfillment against the storage engine and
// retries transaction conflicts with exponential backoff. Business-rule
// failures (unknown book, already purchased, invalid profile) are returned
// to the caller untouched - user messaging is the HTTP layer's concern.
package fulfillorder
