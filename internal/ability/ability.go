package ability

import (
	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type Action string

const (
	ActionManage  Action = "manage"
	ActionRead    Action = "read"
	ActionIndex   Action = "index"
	ActionShow    Action = "show"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"

	ActionMembers       Action = "members"
	ActionSubjects      Action = "subjects"
	ActionSupervisors   Action = "supervisors"
	ActionSearchMembers Action = "search_members"
	ActionLeave         Action = "leave"
	ActionAddSubject    Action = "add_subject"

	ActionUpdateStatus           Action = "update_status"
	ActionUpdateUserCourseStatus Action = "update_user_course_status"
	ActionDeleteUserCourse       Action = "delete_user_course"
	ActionBulkDeactivate         Action = "bulk_deactivate"

	ActionUpdateDocument  Action = "update_document"
	ActionUpdateSpentTime Action = "update_spent_time"
	ActionDestroyDocument Action = "destroy_document"

	ActionCreateTask     Action = "create_task"
	ActionUpdateTask     Action = "update_task"
	ActionUpdateScore    Action = "update_score"
	ActionCreateComment  Action = "create_comment"
	ActionUpdateComment  Action = "update_comment"
	ActionDestroyComment Action = "destroy_comment"
	ActionFinish         Action = "finish"
)

type scopeFunc func(user *types.User, res any) bool

type rule struct {
	role     types.Role
	resource string
	actions  []Action
	scope    scopeFunc
}

func (r rule) allows(action Action) bool {
	for _, a := range r.actions {
		if a == action {
			return true
		}
		if a == ActionManage {
			return true
		}
		// read covers the collection and the single-record view
		if a == ActionRead && (action == ActionIndex || action == ActionShow || action == ActionRead) {
			return true
		}
	}
	return false
}

// Ability is the role permission matrix, built once at startup and read-only
// afterwards. Can is deny-by-default: an unmatched (role, resource, action)
// triple is a refusal.
type Ability struct {
	rules []rule
}

func New() *Ability {
	return &Ability{rules: buildRules()}
}

func buildRules() []rule {
	return []rule{
		// ---------------- Trainee ----------------
		{
			role: types.RoleTrainee, resource: "DailyReport",
			actions: []Action{ActionManage},
			scope: func(user *types.User, res any) bool {
				report := res.(*types.DailyReport)
				return report.UserID == user.ID
			},
		},
		{
			role: types.RoleTrainee, resource: "Course",
			actions: []Action{ActionRead, ActionMembers, ActionSubjects},
			scope: func(user *types.User, res any) bool {
				return res.(*types.Course).EnrolledBy(user.ID)
			},
		},
		{
			role: types.RoleTrainee, resource: "Subject",
			actions: []Action{ActionRead},
			scope: func(user *types.User, res any) bool {
				return res.(*types.Subject).EnrolledBy(user.ID)
			},
		},
		{
			role: types.RoleTrainee, resource: "UserSubject",
			actions: []Action{ActionUpdate},
			scope: func(user *types.User, res any) bool {
				return res.(*types.UserSubject).UserID == user.ID
			},
		},
		{
			role: types.RoleTrainee, resource: "UserTask",
			actions: []Action{ActionUpdateDocument, ActionUpdateStatus, ActionUpdateSpentTime, ActionDestroyDocument},
			scope: func(user *types.User, res any) bool {
				return res.(*types.UserTask).UserID == user.ID
			},
		},

		// ---------------- Supervisor ----------------
		{
			role: types.RoleSupervisor, resource: "DailyReport",
			actions: []Action{ActionRead},
			scope: func(user *types.User, res any) bool {
				return user.Supervises(res.(*types.DailyReport).CourseID)
			},
		},
		{role: types.RoleSupervisor, resource: "Subject", actions: []Action{ActionManage}},
		{role: types.RoleSupervisor, resource: "Task", actions: []Action{ActionManage}},
		{role: types.RoleSupervisor, resource: "Category", actions: []Action{ActionManage}},
		{
			// user management stops short of destroy
			role: types.RoleSupervisor, resource: "User",
			actions: []Action{
				ActionIndex, ActionShow, ActionUpdate, ActionUpdateStatus,
				ActionUpdateUserCourseStatus, ActionDeleteUserCourse, ActionBulkDeactivate,
			},
		},
		{
			role: types.RoleSupervisor, resource: "Course",
			actions: []Action{
				ActionIndex, ActionShow, ActionCreate, ActionUpdate, ActionMembers,
				ActionSubjects, ActionSupervisors, ActionSearchMembers, ActionLeave, ActionAddSubject,
			},
			scope: func(user *types.User, res any) bool {
				return res.(*types.Course).SupervisedBy(user.ID)
			},
		},
		{
			role: types.RoleSupervisor, resource: "UserCourse",
			actions: []Action{ActionManage},
			scope: func(user *types.User, res any) bool {
				return user.Supervises(res.(*types.UserCourse).CourseID)
			},
		},
		{
			role: types.RoleSupervisor, resource: "CourseSupervisor",
			actions: []Action{ActionManage},
			scope: func(user *types.User, res any) bool {
				return user.Supervises(res.(*types.CourseSupervisor).CourseID)
			},
		},
		{
			role: types.RoleSupervisor, resource: "CourseSubject",
			actions: []Action{
				ActionShow, ActionCreateTask, ActionUpdateTask, ActionUpdateScore,
				ActionCreateComment, ActionDestroyComment, ActionUpdateComment,
				ActionFinish, ActionDestroy,
			},
			scope: func(user *types.User, res any) bool {
				return user.Supervises(res.(*types.CourseSubject).CourseID)
			},
		},
	}
}

// Can reports whether user may perform action on res. A nil user is always
// denied. Scope predicates only apply to persisted records: a zero-ID
// resource stands for its whole type, the class-level check a caller makes
// before creating anything.
func (a *Ability) Can(user *types.User, action Action, res any) bool {
	if user == nil {
		return false
	}

	name, id := describe(res)
	if name == "" {
		return false
	}

	if user.Role == types.RoleAdmin {
		// admin manages everything but never rewrites trainee daily reports
		if name == "DailyReport" && (action == ActionUpdate || action == ActionDestroy) {
			return false
		}
		return true
	}

	for _, rl := range a.rules {
		if rl.role != user.Role || rl.resource != name {
			continue
		}
		if !rl.allows(action) {
			continue
		}
		if rl.scope == nil || id == uuid.Nil {
			return true
		}
		if rl.scope(user, res) {
			return true
		}
	}
	return false
}

func describe(res any) (string, uuid.UUID) {
	switch v := res.(type) {
	case *types.DailyReport:
		if v == nil {
			return "DailyReport", uuid.Nil
		}
		return "DailyReport", v.ID
	case *types.Course:
		if v == nil {
			return "Course", uuid.Nil
		}
		return "Course", v.ID
	case *types.Subject:
		if v == nil {
			return "Subject", uuid.Nil
		}
		return "Subject", v.ID
	case *types.Task:
		if v == nil {
			return "Task", uuid.Nil
		}
		return "Task", v.ID
	case *types.Category:
		if v == nil {
			return "Category", uuid.Nil
		}
		return "Category", v.ID
	case *types.User:
		if v == nil {
			return "User", uuid.Nil
		}
		return "User", v.ID
	case *types.CourseSubject:
		if v == nil {
			return "CourseSubject", uuid.Nil
		}
		return "CourseSubject", v.ID
	case *types.UserCourse:
		if v == nil {
			return "UserCourse", uuid.Nil
		}
		return "UserCourse", v.ID
	case *types.CourseSupervisor:
		if v == nil {
			return "CourseSupervisor", uuid.Nil
		}
		return "CourseSupervisor", v.ID
	case *types.UserSubject:
		if v == nil {
			return "UserSubject", uuid.Nil
		}
		return "UserSubject", v.ID
	case *types.UserTask:
		if v == nil {
			return "UserTask", uuid.Nil
		}
		return "UserTask", v.ID
	case *types.Comment:
		if v == nil {
			return "Comment", uuid.Nil
		}
		return "Comment", v.ID
	default:
		return "", uuid.Nil
	}
}
