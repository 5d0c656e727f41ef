package domain

import "slices"

// Principal is the authenticated caller carried by a verified identity token.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Operation names a gated core operation.
type Operation string

const (
	OpCreateSeminar             Operation = "seminar.create"
	OpListSeminars              Operation = "seminar.list"
	OpGetSeminar                Operation = "seminar.get"
	OpUpdateSeminar             Operation = "seminar.update"
	OpDeleteSeminar             Operation = "seminar.delete"
	OpGenerateQRCode            Operation = "seminar.qr"
	OpListSeminarsWithAttendees Operation = "seminar.list_with_attendees"
	OpRegister                  Operation = "seminar.register"
	OpListConfirmedSeminars     Operation = "seminar.list_confirmed"
	OpSendInvitations           Operation = "invitation.send"
	OpListInvitations           Operation = "invitation.list"
	OpGetInvitation             Operation = "invitation.get"
	OpRSVP                      Operation = "invitation.rsvp"
	OpGetCurrentUser            Operation = "user.current"
	OpListUsers                 Operation = "user.list"
	OpCreateAdmin               Operation = "admin.create"
)

// AccessPolicy maps each operation to the roles allowed to invoke it.
// An empty role list admits any authenticated principal; operations missing from the map are denied.
type AccessPolicy map[Operation][]Role

// DefaultAccessPolicy is the role table enforced by the HTTP gate.
var DefaultAccessPolicy = AccessPolicy{
	OpCreateSeminar:             {RoleAgent},
	OpListSeminars:              {RoleAgent, RoleAttendee, RoleAdmin},
	OpGetSeminar:                {},
	OpUpdateSeminar:             {RoleAgent},
	OpDeleteSeminar:             {RoleAgent},
	OpGenerateQRCode:            {RoleAgent},
	OpListSeminarsWithAttendees: {RoleAgent},
	OpRegister:                  {RoleAttendee},
	OpListConfirmedSeminars:     {RoleAttendee},
	OpSendInvitations:           {RoleAgent},
	OpListInvitations:           {RoleAttendee},
	OpGetInvitation:             {RoleAttendee},
	OpRSVP:                      {RoleAttendee},
	OpGetCurrentUser:            {},
	OpListUsers:                 {RoleAdmin},
	OpCreateAdmin:               {RoleAdmin},
}

// Authorize returns ErrUnauthenticated when p is nil and ErrForbidden when p's role may not invoke op.
func (ap AccessPolicy) Authorize(p *Principal, op Operation) error {
	if p == nil || p.UserID == "" {
		return ErrUnauthenticated
	}
	roles, ok := ap[op]
	if !ok {
		return ErrForbidden
	}
	if len(roles) == 0 || slices.Contains(roles, p.Role) {
		return nil
	}
	return ErrForbidden
}
