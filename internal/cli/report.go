package cli

import (
	"errors"

	"github.com/nace/luksctl/internal/i18n"
	"github.com/nace/luksctl/internal/volume"
	"github.com/nace/luksctl/internal/workflow"
)

// ReportError prints err as a localized message. Untyped errors are shown
// under the generic failure message.
func (ctx *GlobalContext) ReportError(err error) {
	var wfErr *workflow.Error
	if !errors.As(err, &wfErr) {
		ctx.Logger.Error("%s", ctx.Tr.T(i18n.ErrorKey(workflow.KindUnknown.String()), err.Error()))
		return
	}

	ctx.Logger.Error("%s", ctx.Tr.T(i18n.ErrorKey(wfErr.Kind.String()), wfErr.Path))
	if detail := ctx.detail(wfErr.Err); detail != "" {
		ctx.Logger.Error("%s", ctx.Tr.T(i18n.ErrorDetail, detail))
	}
	if wfErr.RollbackErr != nil {
		ctx.Logger.Error("%s", ctx.Tr.T(i18n.ErrorRollbackFailed, wfErr.RollbackErr.Error()))
	}
}

// ReportWarnings prints each warning and a recovery hint when one applies.
func (ctx *GlobalContext) ReportWarnings(warnings []*workflow.Error) {
	hint := false
	for _, w := range warnings {
		arg := w.Path
		switch w.Kind {
		case workflow.RiskyMountOption:
			arg = w.Err.Error()
		case workflow.LockFailed:
			hint = true
		}
		ctx.Logger.Warning("%s", ctx.Tr.T(i18n.WarningKey(w.Kind.String()), arg))
		if w.Err != nil && w.Kind != workflow.RiskyMountOption {
			ctx.Logger.Debug("%s", ctx.Tr.T(i18n.ErrorDetail, w.Err.Error()))
		}
	}
	if hint {
		ctx.Logger.Info("%s", ctx.Tr.T(i18n.HintRetryUnmount))
	}
}

func (ctx *GlobalContext) detail(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, volume.ErrIncorrectPassphrase):
		return ctx.Tr.T(i18n.IncorrectPassphrase)
	}
	return err.Error()
}
