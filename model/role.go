package model

import (
	"fmt"
	"strings"
)

// Role is the privilege level of a user. A user holds exactly one role, and
// role checks compare values exactly, "adm" never matches "admin".
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleReader    Role = "reader"
)

// AllRoles lists every valid role from the most to the least privileged.
var AllRoles = []Role{RoleAdmin, RoleModerator, RoleReader}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts user input into a Role. Only the exact role names are
// accepted, surrounding spaces are ignored.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", NewValidationError("role", fmt.Sprintf("unknown role %q", s))
	}
	return r, nil
}

// ContentKind tells which discussion entity a comment edit targets. Comments
// and replies share one edit form but live in different tables.
type ContentKind string

const (
	ContentComment ContentKind = "comment"
	ContentReply   ContentKind = "reply"
)

// ParseContentKind returns NotFoundError for anything but "comment" or
// "reply", the same outcome as requesting a missing entity.
func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case ContentComment, ContentReply:
		return ContentKind(s), nil
	}
	return "", &NotFoundError{Entity: "content type", Key: s}
}
