// Package approvalflow provides a workflow approval engine.
//
// Requests are created against a versioned workflow definition, pinned to
// that version, and advanced step by step as assignees approve them. Steps
// are assigned to users, to every active holder of a role, or to the
// initiator's manager; a step may be skipped by a form data condition. A
// step nobody can act on halts the request in PENDING_ASSIGNMENT until an
// administrator recovers it. Every state change is explained by an
// append-only audit action committed together with it.
//
// The root package wires the engine with the configured stores:
//
//	srv, _ := approvalflow.New(ctx, config)
//	req, _ := srv.Engine().CreateRequest(ctx, "expense", formData, "alice")
//	req, _ = srv.Engine().Act(ctx, req.ID, "bob", model.ActionApprove, "ok")
package approvalflow

// Version is reported to tracing
const Version = "0.1.0"
