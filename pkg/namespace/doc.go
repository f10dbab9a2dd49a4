// Package namespace validates and serves namespace settings: how many
// groups a couple in this namespace must have, what write-
// acknowledgement policy it requires, and (optionally) which exact
// couple is pinned to it. Settings are persisted through pkg/storage;
// a static-couple setting is additionally checked against the live
// topology at Setup time, since it names a couple by id rather than by
// structural property.
package namespace
