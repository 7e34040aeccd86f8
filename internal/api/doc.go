// Package api sends mutation and query requests to the matching engine
// over HTTP. Every call returns only an acknowledgement; confirmation or
// rejection arrives later as an event on a streaming session.
package api
