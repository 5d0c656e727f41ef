package domain

import "context"

// QRGenerator encodes content as a scannable image and returns it as a data URL.
type QRGenerator interface {
	Generate(content string) (dataURL string, err error)
}

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// NotificationDispatcher produces QR artifacts and delivers out-of-band notices.
// Send* methods are best-effort and never report delivery failures to the caller.
type NotificationDispatcher interface {
	GenerateQRArtifact(ctx context.Context, registrationURL string) (string, error)
	SendAcceptanceNotice(user *User, seminar *Seminar)
	SendInvitationNotices(seminar *Seminar, invitees []*User)
	SendWelcome(user *User)
}
