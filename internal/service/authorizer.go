package service

import "github.com/noah-isme/college-notes-api/internal/models"

// Authorizer answers capability questions for a caller. Workflows consult it
// instead of comparing role strings.
type Authorizer struct{}

// NewAuthorizer returns the role based authorizer.
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// CanModerate reports whether the actor may approve or reject submissions and
// publish without review.
func (a *Authorizer) CanModerate(actor *models.Actor) bool {
	return actor != nil && (actor.Role == models.RoleTeacher || actor.Role == models.RoleAdmin)
}

// CanAdminister reports whether the actor holds the admin role.
func (a *Authorizer) CanAdminister(actor *models.Actor) bool {
	return actor != nil && actor.Role == models.RoleAdmin
}

// CanManage reports whether the actor may delete the item: its uploader or an admin.
func (a *Authorizer) CanManage(actor *models.Actor, item *models.ContentItem) bool {
	if actor == nil || item == nil {
		return false
	}
	return item.UploadedBy == actor.ID || a.CanAdminister(actor)
}

// CanSeePending reports whether a pending item is visible to the actor.
func (a *Authorizer) CanSeePending(actor *models.Actor, item *models.ContentItem) bool {
	if actor == nil || item == nil {
		return false
	}
	return item.UploadedBy == actor.ID || a.CanModerate(actor)
}

// CanDeleteComment allows the comment author and admins.
func (a *Authorizer) CanDeleteComment(actor *models.Actor, comment *models.Comment) bool {
	if actor == nil || comment == nil {
		return false
	}
	return comment.AuthorID == actor.ID || a.CanAdminister(actor)
}

// CanManageEvent allows the event creator and admins.
func (a *Authorizer) CanManageEvent(actor *models.Actor, event *models.Event) bool {
	if actor == nil || event == nil {
		return false
	}
	return event.CreatedBy == actor.ID || a.CanAdminister(actor)
}
