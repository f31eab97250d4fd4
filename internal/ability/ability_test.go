package ability

import (
	"testing"

	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/types"
)

func TestCan(t *testing.T) {
	traineeID := uuid.New()
	otherID := uuid.New()
	courseID := uuid.New()
	otherCourseID := uuid.New()

	trainee := &types.User{ID: traineeID, Role: types.RoleTrainee}
	supervisor := &types.User{ID: otherID, Role: types.RoleSupervisor, SupervisedCourseIDs: []uuid.UUID{courseID}}
	admin := &types.User{ID: uuid.New(), Role: types.RoleAdmin}

	ownReport := &types.DailyReport{ID: uuid.New(), UserID: traineeID, CourseID: courseID}
	foreignReport := &types.DailyReport{ID: uuid.New(), UserID: otherID, CourseID: otherCourseID}

	enrolledCourse := &types.Course{ID: courseID, EnrolledUserIDs: []uuid.UUID{traineeID}, SupervisorIDs: []uuid.UUID{otherID}}
	strangeCourse := &types.Course{ID: otherCourseID}

	enrolledSubject := &types.Subject{ID: uuid.New(), EnrolledUserIDs: []uuid.UUID{traineeID}}
	strangeSubject := &types.Subject{ID: uuid.New()}

	ownUserSubject := &types.UserSubject{ID: uuid.New(), UserID: traineeID}
	foreignUserSubject := &types.UserSubject{ID: uuid.New(), UserID: otherID}

	ownUserTask := &types.UserTask{ID: uuid.New(), UserID: traineeID}
	foreignUserTask := &types.UserTask{ID: uuid.New(), UserID: otherID}

	supervisedCourseSubject := &types.CourseSubject{ID: uuid.New(), CourseID: courseID}
	foreignCourseSubject := &types.CourseSubject{ID: uuid.New(), CourseID: otherCourseID}

	cases := []struct {
		name   string
		user   *types.User
		action Action
		res    any
		want   bool
	}{
		{name: "nil_user_denied", user: nil, action: ActionRead, res: enrolledCourse, want: false},

		// trainee daily reports
		{name: "trainee_manages_own_report", user: trainee, action: ActionDestroy, res: ownReport, want: true},
		{name: "trainee_denied_foreign_report", user: trainee, action: ActionRead, res: foreignReport, want: false},

		// trainee courses and subjects
		{name: "trainee_reads_enrolled_course", user: trainee, action: ActionRead, res: enrolledCourse, want: true},
		{name: "trainee_lists_members_of_enrolled_course", user: trainee, action: ActionMembers, res: enrolledCourse, want: true},
		{name: "trainee_denied_unenrolled_course", user: trainee, action: ActionRead, res: strangeCourse, want: false},
		{name: "trainee_denied_course_update", user: trainee, action: ActionUpdate, res: enrolledCourse, want: false},
		{name: "trainee_reads_enrolled_subject", user: trainee, action: ActionShow, res: enrolledSubject, want: true},
		{name: "trainee_denied_unenrolled_subject", user: trainee, action: ActionRead, res: strangeSubject, want: false},

		// trainee progress records
		{name: "trainee_updates_own_user_subject", user: trainee, action: ActionUpdate, res: ownUserSubject, want: true},
		{name: "trainee_denied_foreign_user_subject", user: trainee, action: ActionUpdate, res: foreignUserSubject, want: false},
		{name: "trainee_updates_own_task_status", user: trainee, action: ActionUpdateStatus, res: ownUserTask, want: true},
		{name: "trainee_updates_own_task_document", user: trainee, action: ActionUpdateDocument, res: ownUserTask, want: true},
		{name: "trainee_updates_own_task_spent_time", user: trainee, action: ActionUpdateSpentTime, res: ownUserTask, want: true},
		{name: "trainee_destroys_own_task_document", user: trainee, action: ActionDestroyDocument, res: ownUserTask, want: true},
		{name: "trainee_denied_foreign_task", user: trainee, action: ActionUpdateStatus, res: foreignUserTask, want: false},

		// supervisor catalog
		{name: "supervisor_manages_subjects", user: supervisor, action: ActionDestroy, res: strangeSubject, want: true},
		{name: "supervisor_manages_tasks", user: supervisor, action: ActionCreate, res: &types.Task{}, want: true},
		{name: "supervisor_manages_categories", user: supervisor, action: ActionUpdate, res: &types.Category{ID: uuid.New()}, want: true},

		// supervisor users
		{name: "supervisor_lists_users", user: supervisor, action: ActionIndex, res: &types.User{}, want: true},
		{name: "supervisor_updates_user", user: supervisor, action: ActionUpdate, res: trainee, want: true},
		{name: "supervisor_never_destroys_user", user: supervisor, action: ActionDestroy, res: trainee, want: false},

		// supervisor courses
		{name: "supervisor_updates_assigned_course", user: supervisor, action: ActionUpdate, res: enrolledCourse, want: true},
		{name: "supervisor_denied_unassigned_course", user: supervisor, action: ActionUpdate, res: strangeCourse, want: false},
		{name: "supervisor_reads_assigned_report", user: supervisor, action: ActionRead, res: ownReport, want: true},
		{name: "supervisor_denied_unassigned_report", user: supervisor, action: ActionRead, res: foreignReport, want: false},
		{name: "supervisor_never_updates_report", user: supervisor, action: ActionUpdate, res: ownReport, want: false},

		// supervisor course subjects
		{name: "supervisor_scores_assigned_course_subject", user: supervisor, action: ActionUpdateScore, res: supervisedCourseSubject, want: true},
		{name: "supervisor_denied_unassigned_course_subject", user: supervisor, action: ActionUpdateScore, res: foreignCourseSubject, want: false},
		{name: "supervisor_finishes_assigned_course_subject", user: supervisor, action: ActionFinish, res: supervisedCourseSubject, want: true},

		// admin
		{name: "admin_manages_courses", user: admin, action: ActionDestroy, res: strangeCourse, want: true},
		{name: "admin_manages_users", user: admin, action: ActionDestroy, res: trainee, want: true},
		{name: "admin_reads_reports", user: admin, action: ActionRead, res: foreignReport, want: true},
		{name: "admin_never_updates_report", user: admin, action: ActionUpdate, res: ownReport, want: false},
		{name: "admin_never_destroys_report", user: admin, action: ActionDestroy, res: ownReport, want: false},
	}

	a := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Can(tc.user, tc.action, tc.res)
			if got != tc.want {
				t.Fatalf("Can(%v, %q, %T)=%v, want %v", tc.user, tc.action, tc.res, got, tc.want)
			}
		})
	}
}

func TestCanClassLevelCheck(t *testing.T) {
	supervisor := &types.User{ID: uuid.New(), Role: types.RoleSupervisor}

	// a zero-ID course stands for the type itself, so the scope predicate
	// does not apply yet
	if !New().Can(supervisor, ActionCreate, &types.Course{}) {
		t.Fatal("supervisor should pass the class-level create check on courses")
	}
}
