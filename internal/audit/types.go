// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// Package audit provides the tamper-evident, per-organization audit chain:
// canonical hashing, the chain writer, the verifier, the query engine and
// the JetStream-backed store.
package audit

import "time"

// Severity ranks how important an audit event is.
type Severity string

// Severity values, in ascending rank.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity in ascending rank.
var Severities = []Severity{
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
	SeverityCritical,
}

// Rank returns the ordinal of s, or -1 when s is unknown.
func (s Severity) Rank() int {
	for i, v := range Severities {
		if v == s {
			return i
		}
	}

	return -1
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// Category is the coarse classification of an audit event.
type Category string

// Category values.
const (
	CategoryAuthentication         Category = "authentication"
	CategoryCaseManagement         Category = "case_management"
	CategoryUserManagement         Category = "user_management"
	CategoryOrganizationManagement Category = "organization_management"
	CategoryBilling                Category = "billing"
	CategoryAPIAccess              Category = "api_access"
	CategorySystem                 Category = "system"
	CategorySecurity               Category = "security"
	CategoryCompliance             Category = "compliance"
)

// Categories lists every category.
var Categories = []Category{
	CategoryAuthentication,
	CategoryCaseManagement,
	CategoryUserManagement,
	CategoryOrganizationManagement,
	CategoryBilling,
	CategoryAPIAccess,
	CategorySystem,
	CategorySecurity,
	CategoryCompliance,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}

	return false
}

// ActorType identifies what kind of principal triggered an event.
type ActorType string

// ActorType values.
const (
	ActorUser         ActorType = "user"
	ActorSystem       ActorType = "system"
	ActorAPI          ActorType = "api"
	ActorWebhook      ActorType = "webhook"
	ActorScheduledJob ActorType = "scheduled_job"
	ActorAnonymous    ActorType = "anonymous"
)

// ActorTypes lists every actor type.
var ActorTypes = []ActorType{
	ActorUser,
	ActorSystem,
	ActorAPI,
	ActorWebhook,
	ActorScheduledJob,
	ActorAnonymous,
}

// Valid reports whether a is a known actor type.
func (a ActorType) Valid() bool {
	for _, v := range ActorTypes {
		if v == a {
			return true
		}
	}

	return false
}

// Action is the verb of an audit event. The set is open; these are the
// verbs the application emits today.
type Action string

// Common actions.
const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
	ActionExport  Action = "export"
	ActionArchive Action = "archive"
	ActionRestore Action = "restore"
	ActionInvite  Action = "invite"
)

// Event is the caller-supplied content of an audit entry. The writer adds
// the identity, chain position, timestamp and hashes.
type Event struct {
	// EventType is a dotted identifier such as "user.invite".
	EventType string `json:"event_type" validate:"required,event_type"`
	// Category is the coarse classification.
	Category Category `json:"category" validate:"required,category"`
	// Action is the verb.
	Action Action `json:"action" validate:"required,max=64"`
	// Severity is one of low, medium, high, critical.
	Severity Severity `json:"severity" validate:"required,severity"`
	// ActorType identifies the kind of principal.
	ActorType ActorType `json:"actor_type" validate:"required,actor_type"`

	ActorID        string `json:"actor_id"         validate:"max=255"`
	ActorEmail     string `json:"actor_email"      validate:"omitempty,email"`
	ActorIPAddress string `json:"actor_ip_address" validate:"omitempty,ip"`
	ActorUserAgent string `json:"actor_user_agent" validate:"max=1024"`

	TargetType string `json:"target_type" validate:"max=128"`
	TargetID   string `json:"target_id"   validate:"max=255"`
	TargetName string `json:"target_name" validate:"max=512"`

	// Summary is a one-line human readable description.
	Summary     string `json:"summary"     validate:"required,max=1024"`
	Description string `json:"description" validate:"max=16384"`

	BeforeState Value `json:"before_state"`
	AfterState  Value `json:"after_state"`
	Metadata    Value `json:"metadata"`

	RequestPath string `json:"request_path" validate:"max=2048"`

	// IdempotencyKey deduplicates retried appends for one organization
	// across every writer sharing the store. The key is claimed before the
	// entry is linked; it is tracked beside the chain and is not part of the
	// entry.
	IdempotencyKey string `json:"-" validate:"max=255"`
}

// Entry is one immutable, hash-linked record of an organization's chain.
type Entry struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	ChainIndex     uint64    `json:"chain_index"`
	PreviousHash   string    `json:"previous_hash"`
	Hash           string    `json:"hash"`
	CreatedAt      time.Time `json:"created_at"`

	EventType      string    `json:"event_type"`
	Category       Category  `json:"category"`
	Action         Action    `json:"action"`
	Severity       Severity  `json:"severity"`
	ActorType      ActorType `json:"actor_type"`
	ActorID        string    `json:"actor_id"`
	ActorEmail     string    `json:"actor_email"`
	ActorIPAddress string    `json:"actor_ip_address"`
	ActorUserAgent string    `json:"actor_user_agent"`
	TargetType     string    `json:"target_type"`
	TargetID       string    `json:"target_id"`
	TargetName     string    `json:"target_name"`
	Summary        string    `json:"summary"`
	Description    string    `json:"description"`
	BeforeState    Value     `json:"before_state"`
	AfterState     Value     `json:"after_state"`
	Metadata       Value     `json:"metadata"`
	RequestPath    string    `json:"request_path"`
}

// Event returns the logical event carried by e.
func (e Entry) Event() Event {
	return Event{
		EventType:      e.EventType,
		Category:       e.Category,
		Action:         e.Action,
		Severity:       e.Severity,
		ActorType:      e.ActorType,
		ActorID:        e.ActorID,
		ActorEmail:     e.ActorEmail,
		ActorIPAddress: e.ActorIPAddress,
		ActorUserAgent: e.ActorUserAgent,
		TargetType:     e.TargetType,
		TargetID:       e.TargetID,
		TargetName:     e.TargetName,
		Summary:        e.Summary,
		Description:    e.Description,
		BeforeState:    e.BeforeState,
		AfterState:     e.AfterState,
		Metadata:       e.Metadata,
		RequestPath:    e.RequestPath,
	}
}

// Head is the tip of an organization's chain.
type Head struct {
	ChainIndex uint64    `json:"chain_index"`
	Hash       string    `json:"hash"`
	CreatedAt  time.Time `json:"created_at"`
}

// Len returns the number of entries in a chain whose head is h. A nil head
// is an empty chain.
func (h *Head) Len() uint64 {
	if h == nil {
		return 0
	}

	return h.ChainIndex + 1
}
