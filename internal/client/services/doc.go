// Package services contains the application services of the mediashare
// client: the session manager, account helpers, the resource aggregation
// engine, and the mutating media and comment operations.
//
// Hard failures (login, register, profile update, upload, edit, delete,
// comment) are returned as errors. Best-effort flows (auto-login, logout,
// the empty-on-error comment list) return common.SoftFailure instead, which
// the caller acknowledges by logging it.
package services
