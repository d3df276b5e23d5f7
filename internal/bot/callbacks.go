package bot

import (
	"strconv"
	"strings"
)

type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentView
	IntentBack
	IntentDelete
	IntentDeleteConfirm
	IntentProfileNew
	IntentProfileEdit
	IntentReportCategory
	IntentReportCancel
	IntentNewConfirm
	IntentNewCancel
	IntentEditConfirm
	IntentEditCancel
	IntentReview
	IntentAdminSection
	IntentAdminProfile
	IntentAdminEdit
	IntentAdminDelete
	IntentAFKCancel
	IntentAdminAppCancel
)

// Intent is one decoded callback button press. Callback data is decoded here
// once so the handlers never re-parse raw strings.
type Intent struct {
	Kind     IntentKind
	Username string
	Section  string
	Category string

	ProfileID int64
	Approve   bool
}

func DecodeIntent(data string) Intent {
	switch data {
	case "profile:new_start":
		return Intent{Kind: IntentProfileNew}
	case "profile:edit_start":
		return Intent{Kind: IntentProfileEdit}
	case "report:cancel":
		return Intent{Kind: IntentReportCancel}
	case "new:confirm":
		return Intent{Kind: IntentNewConfirm}
	case "new:cancel":
		return Intent{Kind: IntentNewCancel}
	case "edit:confirm":
		return Intent{Kind: IntentEditConfirm}
	case "edit:cancel":
		return Intent{Kind: IntentEditCancel}
	case "afk:cancel":
		return Intent{Kind: IntentAFKCancel}
	case "admin_app:cancel":
		return Intent{Kind: IntentAdminAppCancel}
	}

	prefix, rest, ok := strings.Cut(data, ":")
	if !ok || rest == "" {
		return Intent{Kind: IntentUnknown}
	}

	switch prefix {
	case "view":
		return Intent{Kind: IntentView, Username: rest}
	case "back":
		return Intent{Kind: IntentBack, Section: rest}
	case "delete":
		return Intent{Kind: IntentDelete, Username: rest}
	case "delete_confirm":
		return Intent{Kind: IntentDeleteConfirm, Username: rest}
	case "report":
		return Intent{Kind: IntentReportCategory, Category: rest}
	case "review":
		idRaw, decision, ok := strings.Cut(rest, ":")
		if !ok {
			return Intent{Kind: IntentUnknown}
		}
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil || id <= 0 {
			return Intent{Kind: IntentUnknown}
		}
		switch decision {
		case "accept":
			return Intent{Kind: IntentReview, ProfileID: id, Approve: true}
		case "reject":
			return Intent{Kind: IntentReview, ProfileID: id, Approve: false}
		}
		return Intent{Kind: IntentUnknown}
	case "admin":
		sub, arg, ok := strings.Cut(rest, ":")
		if !ok {
			switch rest {
			case "reports", "clear_reports", "new_profiles", "manage_profiles",
				"afk_requests", "admin_applications":
				return Intent{Kind: IntentAdminSection, Section: rest}
			}
			return Intent{Kind: IntentUnknown}
		}
		switch sub {
		case "profile":
			return Intent{Kind: IntentAdminProfile, Username: arg}
		case "edit":
			return Intent{Kind: IntentAdminEdit, Username: arg}
		case "delete":
			return Intent{Kind: IntentAdminDelete, Username: arg}
		}
	}

	return Intent{Kind: IntentUnknown}
}
