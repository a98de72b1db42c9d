package project

import "errors"

// Domain errors for the project module.
var (
	// Project errors
	ErrProjectNotFound    = errors.New("project not found")
	ErrPermissionDenied   = errors.New("insufficient permission")
	ErrOnlyOwnerCanDelete = errors.New("only the owner can delete a project")

	// Invitation errors
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrDuplicateInvitation = errors.New("an invitation for this email already exists")
	ErrNotInvitee          = errors.New("invitation is addressed to a different user")
	ErrInvitationProcessed = errors.New("invitation has already been processed")
	ErrNotificationFailed  = errors.New("invitation email could not be sent")
	ErrInvalidRole         = errors.New("invalid role")
)
