// Package proxy documents the traffic of a real client. It forwards every
// request to a target server and records each exchange into an example,
// the same way a recorder documents calls made through a session.
package proxy
