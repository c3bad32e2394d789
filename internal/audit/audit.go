package audit

import (
	"context"

	"github.com/mgregerson/chirper-mg/pkg/log"
)

// Audit actions.
const (
	ActionRegister      = "user.register"
	ActionLogin         = "user.login"
	ActionLoginFailed   = "user.login_failed"
	ActionLogout        = "user.logout"
	ActionUpdateProfile = "user.update_profile"
	ActionDeleteAccount = "user.delete_account"
	ActionFollow        = "graph.follow"
	ActionUnfollow      = "graph.unfollow"
	ActionPostWarble    = "warble.post"
	ActionDeleteWarble  = "warble.delete"
	ActionLikeWarble    = "warble.like"
	ActionUnlikeWarble  = "warble.unlike"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit log entry that references a second entity, such as
// the followed user or the liked warble.
func LogTarget(ctx context.Context, action string, userID, targetID uint, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Uint(log.FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID uint, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Uint(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
