package utils

import (
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
)

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

// InternalError logs the cause and answers with a generic 500.
func InternalError(ctx iris.Context, err error, what string) {
	golog.Errorf("%s %s: %s: %v", ctx.Method(), ctx.Path(), what, err)
	JSONError(ctx, iris.StatusInternalServerError, "internal_error", "Something went wrong, please try again later")
}

// Flash stores a one-shot message for the next page the client loads.
func Flash(ctx iris.Context, kind, message string) {
	if sess := sessions.Get(ctx); sess != nil {
		sess.SetFlash(kind, message)
	}
}

// Fail flashes message as an error and redirects to target, stopping the
// handler chain.
func Fail(ctx iris.Context, target, message string) {
	Flash(ctx, "danger", message)
	ctx.Redirect(target, iris.StatusSeeOther)
	ctx.StopExecution()
}

func Succeed(ctx iris.Context, target, message string) {
	Flash(ctx, "success", message)
	ctx.Redirect(target, iris.StatusSeeOther)
}

// Flashes drains the pending flash messages of the session.
func Flashes(ctx iris.Context) iris.Map {
	out := iris.Map{}
	sess := sessions.Get(ctx)
	if sess == nil {
		return out
	}
	for _, kind := range []string{"success", "danger"} {
		if msg := sess.GetFlashString(kind); msg != "" {
			out[kind] = msg
		}
	}
	return out
}
