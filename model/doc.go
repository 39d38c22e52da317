// Package model contains the in-memory representation of approval workflow
// definitions, request instances and the audit records produced while a
// request moves through its stages.
//
// Definitions are typically loaded from YAML or JSON documents; the wire
// representation of a step's approver configuration is normalised once, when
// the definition is initialised, into the sealed Approver sum type so that
// engine code never inspects raw approver fields.
package model
