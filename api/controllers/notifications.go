package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/emekaobi/freshbasket-backend/api/middleware"
	"github.com/emekaobi/freshbasket-backend/api/responses"
	"github.com/emekaobi/freshbasket-backend/api/validators"
	"github.com/emekaobi/freshbasket-backend/internal/notifications"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// recipientFromRequest resolves the notification feed the caller may read.
// Admins read the shared admin feed; everyone else reads their own.
func recipientFromRequest(r *http.Request) (enums.NotificationRecipient, string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	if middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin) {
		return enums.NotificationRecipientAdmin, "", nil
	}
	return enums.NotificationRecipientUser, userID, nil
}

// ListNotifications returns paginated notifications for the caller's feed.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		recipient, recipientID, err := recipientFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.List(r.Context(), notifications.ListParams{
			Recipient:   recipient,
			RecipientID: recipientID,
			Limit:       limit,
			Cursor:      strings.TrimSpace(r.URL.Query().Get("cursor")),
			UnreadOnly:  unreadOnly,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// MarkNotificationRead marks one notification in the caller's feed as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		recipient, recipientID, err := recipientFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationID, err := uuid.Parse(chi.URLParam(r, "notificationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}

		if err := svc.MarkRead(r.Context(), recipient, recipientID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// MarkAllNotificationsRead marks every unread notification in the feed.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		recipient, recipientID, err := recipientFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), recipient, recipientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}
