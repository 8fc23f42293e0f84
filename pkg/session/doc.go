/*
Package session owns the live tour sessions of a process.

A Manager hands out one application state per session ID, serialises intents
on each session with a reference-counted mutex (plus an optional distributed
lock for replicas), and mirrors every committed revision into a
ports.SessionStore so another replica can pick the session up.
*/
package session
