// Package services contains the application services the HTTP layer calls
// into: the cache-fronted data service and the health service.
package services
