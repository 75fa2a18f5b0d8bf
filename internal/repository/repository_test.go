package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/config"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/database"
	pkgerrors "github.com/MRsanjuedit/FPMS-Backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "fpms.db")}
	db, err := database.NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := database.Migrate(db, "sqlite", zap.NewNop(), model.All()...); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(newTestDB(t), Options{MaxSaveAttempts: 3})
}

var routing = workflow.NewRoutingTable([]workflow.RoleRule{
	{Role: "faculty", SubmitToRoles: []string{"hod", "Dean of Science"}, AppealToRoles: []string{"committee"}},
})

func seedSubmission(t *testing.T, repo *Repository, taskID string) *model.Submission {
	t.Helper()
	actor := workflow.Actor{UserID: "fac-1", Email: "jane@college.edu", Role: "faculty", RoleKey: workflow.RoleKeyFaculty}
	sub, err := workflow.NewSubmission(actor, workflow.SubmitInput{
		FormID: "form-1", CriteriaID: "c-1", TaskID: taskID, ClaimedScore: 6, MaxMarks: 10,
	}, routing, time.Now())
	if err != nil {
		t.Fatalf("NewSubmission: %v", err)
	}
	stored, created, err := repo.Submission.FindOrCreate(context.Background(), sub)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if !created {
		t.Fatalf("expected %s to be created", sub.SubmissionID)
	}
	return stored
}

// ═══════════════════════════════════════════════════════════
// Submission
// ═══════════════════════════════════════════════════════════

func TestSubmission_FindOrCreateIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	first := seedSubmission(t, repo, "t-1")

	again := *first
	again.ClaimedScore = 1
	again.Assignments = nil
	stored, created, err := repo.Submission.FindOrCreate(ctx, &again)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if created {
		t.Fatal("second FindOrCreate must not create")
	}
	if stored.ClaimedScore != 6 || len(stored.Assignments) != 2 {
		t.Fatalf("existing record was modified: %+v", stored)
	}

	var count int64
	repo.Submission.(*submissionRepo).db.Model(&model.Submission{}).Count(&count)
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}
}

func TestSubmission_GetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Submission.GetByID(context.Background(), "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestSubmission_MutateRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	sub := seedSubmission(t, repo, "t-1")
	if sub.Version != 1 {
		t.Fatalf("version = %d, want 1", sub.Version)
	}

	hod := workflow.Actor{UserID: "hod-1", Role: "hod", RoleKey: workflow.RoleKeyHOD}
	score := 4.5
	updated, err := repo.Submission.Mutate(ctx, sub.SubmissionID, func(s *model.Submission) error {
		_, err := workflow.ApplyReview(s, hod, workflow.ReviewInput{VerifiedScore: &score}, routing, time.Now())
		return err
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}

	reloaded, err := repo.Submission.GetByID(ctx, sub.SubmissionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != model.SubmissionStatusApproved || reloaded.Version != 2 {
		t.Fatalf("status=%s version=%d", reloaded.Status, reloaded.Version)
	}
	if reloaded.VerifiedScore == nil || *reloaded.VerifiedScore != 4.5 {
		t.Fatalf("verified = %v", reloaded.VerifiedScore)
	}
	if len(reloaded.ActiveRoleKeys) != 0 {
		t.Fatalf("active = %v, want empty", reloaded.ActiveRoleKeys)
	}
	if a := reloaded.AssignmentFor("deanofscience"); a == nil || a.Status != model.AssignmentSkipped {
		t.Fatalf("dean assignment = %+v", a)
	}
}

func TestSubmission_MutateErrorDoesNotWrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	sub := seedSubmission(t, repo, "t-1")

	boom := errors.New("boom")
	_, err := repo.Submission.Mutate(ctx, sub.SubmissionID, func(s *model.Submission) error {
		s.Status = model.SubmissionStatusApproved
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	reloaded, _ := repo.Submission.GetByID(ctx, sub.SubmissionID)
	if reloaded.Status != model.SubmissionStatusSubmitted || reloaded.Version != 1 {
		t.Fatalf("aborted mutation leaked: status=%s version=%d", reloaded.Status, reloaded.Version)
	}
}

func TestSubmission_ConcurrentReviewRace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	sub := seedSubmission(t, repo, "t-race")

	reviewers := []workflow.Actor{
		{UserID: "hod-1", Role: "hod", RoleKey: workflow.RoleKeyHOD},
		{UserID: "dean-1", Role: "Dean of Science", RoleKey: workflow.NormalizeRoleKey("Dean of Science")},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(reviewers))
	start := make(chan struct{})
	for i, actor := range reviewers {
		wg.Add(1)
		go func(i int, actor workflow.Actor) {
			defer wg.Done()
			<-start
			_, errs[i] = repo.Submission.Mutate(ctx, sub.SubmissionID, func(s *model.Submission) error {
				_, err := workflow.ApplyReview(s, actor, workflow.ReviewInput{}, routing, time.Now())
				return err
			})
		}(i, actor)
	}
	close(start)
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, workflow.ErrAlreadyReviewed):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("won=%d lost=%d, want exactly one of each", won, lost)
	}

	final, err := repo.Submission.GetByID(ctx, sub.SubmissionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	var reviewed, skipped int
	for _, a := range final.Assignments {
		switch a.Status {
		case model.AssignmentReviewed:
			reviewed++
		case model.AssignmentSkipped:
			skipped++
		}
	}
	if reviewed != 1 || skipped != 1 {
		t.Fatalf("assignments = %+v, want one reviewed and one skipped", final.Assignments)
	}
	if final.Version != 2 {
		t.Fatalf("version = %d, want 2", final.Version)
	}
}

func TestSubmission_ListByActiveRoleKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSubmission(t, repo, "t-1")
	seedSubmission(t, repo, "t-2")

	subs, err := repo.Submission.ListByActiveRoleKey(ctx, "hod", []string{model.SubmissionStatusSubmitted, model.SubmissionStatusAppealed})
	if err != nil {
		t.Fatalf("ListByActiveRoleKey: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}

	if subs, _ := repo.Submission.ListByActiveRoleKey(ctx, "ho", nil); len(subs) != 0 {
		t.Fatalf("prefix key matched %d rows", len(subs))
	}
	if subs, _ := repo.Submission.ListByActiveRoleKey(ctx, "hod", []string{model.SubmissionStatusApproved}); len(subs) != 0 {
		t.Fatalf("status filter ignored: %d rows", len(subs))
	}
}

func TestSubmission_ListByReviewer(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	first := seedSubmission(t, repo, "t-1")
	second := seedSubmission(t, repo, "t-2")
	seedSubmission(t, repo, "t-3")

	hod := workflow.Actor{UserID: "hod-1", Role: "hod", RoleKey: workflow.RoleKeyHOD}
	if _, err := repo.Submission.Mutate(ctx, first.SubmissionID, func(s *model.Submission) error {
		_, err := workflow.ApplyReview(s, hod, workflow.ReviewInput{}, routing, time.Now())
		return err
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	// an earlier round recorded only in the log
	if err := repo.SubmissionReview.Append(ctx, &model.SubmissionReview{
		ReviewID: "r-1", SubmissionID: second.SubmissionID, FlowType: model.FlowSubmission,
		ReviewerRole: "hod", ReviewerRoleKey: "hod", ReviewerUserID: "hod-1",
		ClaimedScore: 6, VerifiedScore: 6, ResultStatus: model.SubmissionStatusSubmitted, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	subs, err := repo.Submission.ListByReviewer(ctx, "hod-1")
	if err != nil {
		t.Fatalf("ListByReviewer: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}
	if other, _ := repo.Submission.ListByReviewer(ctx, "dean-1"); len(other) != 0 {
		t.Fatalf("unrelated reviewer sees %d rows", len(other))
	}
}

func TestSubmission_ListQueries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSubmission(t, repo, "t-1")
	seedSubmission(t, repo, "t-2")

	mine, err := repo.Submission.ListByFaculty(ctx, "fac-1", "form-1", "c-1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListByFaculty = %d, %v", len(mine), err)
	}
	if other, _ := repo.Submission.ListByFaculty(ctx, "fac-2", "", ""); len(other) != 0 {
		t.Fatalf("other faculty sees %d rows", len(other))
	}
	if byForm, _ := repo.Submission.ListByForm(ctx, "form-1"); len(byForm) != 2 {
		t.Fatalf("ListByForm = %d", len(byForm))
	}
	if accepted, _ := repo.Submission.ListAcceptedByFaculty(ctx, "fac-1"); len(accepted) != 0 {
		t.Fatalf("ListAcceptedByFaculty = %d", len(accepted))
	}
}

func TestWithRetry(t *testing.T) {
	conflicts := 0
	calls := 0
	opts := Options{MaxSaveAttempts: 3, OnConflict: func() { conflicts++ }}

	err := withRetry(context.Background(), opts, func() error {
		calls++
		return pkgerrors.ErrOptimisticLock
	})
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 || conflicts != 3 {
		t.Fatalf("calls=%d conflicts=%d, want 3/3", calls, conflicts)
	}

	calls = 0
	err = withRetry(context.Background(), opts, func() error {
		calls++
		if calls == 1 {
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}

	other := errors.New("other")
	calls = 0
	if err := withRetry(context.Background(), opts, func() error { calls++; return other }); err != other || calls != 1 {
		t.Fatalf("non-conflict error retried: err=%v calls=%d", err, calls)
	}
}

// ═══════════════════════════════════════════════════════════
// Review log
// ═══════════════════════════════════════════════════════════

func TestSubmissionReview_AppendAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now()

	for i, role := range []string{"hod", "principle"} {
		err := repo.SubmissionReview.Append(ctx, &model.SubmissionReview{
			ReviewID:          role + "-review",
			SubmissionID:      "sub-1",
			FlowType:          model.FlowSubmission,
			ReviewerRole:      role,
			ReviewerRoleKey:   role,
			ReviewerUserID:    role + "-1",
			ClaimedScore:      8,
			VerifiedScore:     7,
			NextSubmitToRoles: []string{"principle"},
			ResultStatus:      model.SubmissionStatusSubmitted,
			CreatedAt:         base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	reviews, err := repo.SubmissionReview.ListBySubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("ListBySubmission: %v", err)
	}
	if len(reviews) != 2 || reviews[0].ReviewerRole != "hod" || reviews[1].ReviewerRole != "principle" {
		t.Fatalf("reviews = %+v", reviews)
	}
	if len(reviews[0].NextSubmitToRoles) != 1 {
		t.Fatalf("next roles lost: %+v", reviews[0])
	}
}

// ═══════════════════════════════════════════════════════════
// Users, rules, forms
// ═══════════════════════════════════════════════════════════

func TestUser_TotalScore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.User.Create(ctx, &model.User{UserID: "fac-1", Name: "Jane", Email: "Jane@College.edu", Role: "faculty"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.User.IncrementTotalScore(ctx, "fac-1", 7); err != nil {
		t.Fatalf("IncrementTotalScore: %v", err)
	}
	if err := repo.User.IncrementTotalScore(ctx, "fac-1", 2.5); err != nil {
		t.Fatalf("IncrementTotalScore: %v", err)
	}
	u, err := repo.User.GetByEmail(ctx, "jane@college.edu")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.TotalScore != 9.5 {
		t.Fatalf("total = %v, want 9.5", u.TotalScore)
	}

	if err := repo.User.IncrementTotalScore(ctx, "nobody", 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("increment without a row: %v", err)
	}

	if err := repo.User.SetTotalScore(ctx, "fac-1", 3); err != nil {
		t.Fatalf("SetTotalScore: %v", err)
	}
	if u, _ = repo.User.GetByID(ctx, "fac-1"); u.TotalScore != 3 {
		t.Fatalf("total = %v, want 3", u.TotalScore)
	}
}

func TestUser_UpsertKeepsScore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	users := []model.User{{UserID: "fac-1", Name: "Jane", Email: "jane@college.edu", Role: "faculty"}}
	if err := repo.User.Upsert(ctx, users); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	_ = repo.User.IncrementTotalScore(ctx, "fac-1", 5)

	users[0].Name = "Jane Doe"
	users[0].TotalScore = 0
	if err := repo.User.Upsert(ctx, users); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	u, _ := repo.User.GetByID(ctx, "fac-1")
	if u.Name != "Jane Doe" || u.TotalScore != 5 {
		t.Fatalf("user = %+v", u)
	}
}

func TestWorkflowRule_ReplaceAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []model.WorkflowRule{
		{RoleKey: "faculty", Role: "faculty", SubmitToRoles: []string{"hod"}, AppealToRoles: []string{"dean"}},
		{RoleKey: "hod", Role: "hod", SubmitToRoles: []string{"principle"}},
	}
	if err := repo.WorkflowRule.ReplaceAll(ctx, first); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if err := repo.WorkflowRule.ReplaceAll(ctx, first[:1]); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	rules, err := repo.WorkflowRule.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rules) != 1 || rules[0].AppealToRoles[0] != "dean" {
		t.Fatalf("rules = %+v", rules)
	}

	if err := repo.Role.Upsert(ctx, []model.Role{{RoleID: "r-1", Name: "faculty"}, {RoleID: "r-2", Name: "hod", Level: 1}}); err != nil {
		t.Fatalf("Role.Upsert: %v", err)
	}
	roles, _ := repo.Role.List(ctx)
	if len(roles) != 2 || roles[0].Name != "faculty" {
		t.Fatalf("roles = %+v", roles)
	}
}

func TestForm_SaveAndTree(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	form := &model.Form{
		FormID:          "form-1",
		Title:           "Annual appraisal",
		ApplicableRoles: model.RoleKeySet{"faculty", "hod"},
		Criteria: []model.FormCriteria{{
			CriteriaID: "c-1",
			Title:      "Teaching",
			Modules: []model.FormModule{{
				ModuleID: "m-1",
				Title:    "Lectures",
				Tasks: []model.FormTask{
					{TaskID: "t-2", Title: "Labs", Marks: 5},
					{TaskID: "t-1", Title: "Theory", Marks: 10},
				},
			}},
		}},
	}
	if err := repo.Form.Save(ctx, form); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tree, err := repo.Form.GetTree(ctx, "form-1")
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree.Criteria) != 1 || len(tree.Criteria[0].Modules) != 1 {
		t.Fatalf("tree = %+v", tree)
	}
	tasks := tree.Criteria[0].Modules[0].Tasks
	if len(tasks) != 2 || tasks[0].TaskID != "t-2" {
		t.Fatalf("tasks out of order: %+v", tasks)
	}

	forms, err := repo.Form.List(ctx)
	if err != nil || len(forms) != 1 {
		t.Fatalf("List = %v, %v", forms, err)
	}
	if !forms[0].ApplicableRoles.Contains("hod") || len(forms[0].Criteria) != 0 {
		t.Fatalf("listed form = %+v", forms[0])
	}

	task, err := repo.Form.GetTask(ctx, "form-1", "c-1", "t-1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Marks != 10 {
		t.Fatalf("marks = %v", task.Marks)
	}

	form.Criteria[0].Modules[0].Tasks[1].Marks = 12
	if err := repo.Form.Save(ctx, form); err != nil {
		t.Fatalf("re-Save: %v", err)
	}
	if task, _ = repo.Form.GetTask(ctx, "form-1", "c-1", "t-1"); task.Marks != 12 {
		t.Fatalf("marks after re-save = %v", task.Marks)
	}
}

// ═══════════════════════════════════════════════════════════
// Module criteria & committee appeals
// ═══════════════════════════════════════════════════════════

func TestModuleCriterion_SaveClaimsSkipsVerified(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	items := []model.ModuleCriterion{
		{CriterionID: "a", Namespace: "module1", OwnerID: "fac-1", SubsectionID: "s1", Name: "Papers", ClaimedScore: 4, MaxScore: 5},
		{CriterionID: "b", Namespace: "module1", OwnerID: "fac-1", SubsectionID: "s1", Name: "Talks", ClaimedScore: 2, MaxScore: 5},
	}
	if _, _, err := repo.ModuleCriterion.SaveClaims(ctx, items); err != nil {
		t.Fatalf("SaveClaims: %v", err)
	}

	if _, err := repo.ModuleCriterion.Mutate(ctx, "a", func(c *model.ModuleCriterion) error {
		s := 3.0
		c.ReviewerScore = &s
		c.IsVerified = true
		return nil
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	items[0].ClaimedScore = 5
	items[1].ClaimedScore = 3
	saved, skipped, err := repo.ModuleCriterion.SaveClaims(ctx, items)
	if err != nil {
		t.Fatalf("SaveClaims again: %v", err)
	}
	if len(saved) != 1 || saved[0] != "b" || len(skipped) != 1 || skipped[0] != "a" {
		t.Fatalf("saved=%v skipped=%v", saved, skipped)
	}

	a, _ := repo.ModuleCriterion.GetByID(ctx, "a")
	b, _ := repo.ModuleCriterion.GetByID(ctx, "b")
	if a.ClaimedScore != 4 || b.ClaimedScore != 3 {
		t.Fatalf("a=%v b=%v", a.ClaimedScore, b.ClaimedScore)
	}
	if b.Version != 2 {
		t.Fatalf("b version = %d, want 2", b.Version)
	}

	list, _ := repo.ModuleCriterion.ListByOwner(ctx, "module1", "fac-1")
	if len(list) != 2 {
		t.Fatalf("ListByOwner = %d", len(list))
	}

	queue, _ := repo.ModuleCriterion.ListByNamespace(ctx, "module1")
	if len(queue) != 2 || queue[0].CriterionID != "b" {
		t.Fatalf("ListByNamespace = %+v", queue)
	}
}

func TestModuleCriterion_ClaimUpsertRefusesVerifiedRow(t *testing.T) {
	db := newTestDB(t)
	score := 3.0
	verified := model.ModuleCriterion{
		CriterionID: "a", Namespace: "module1", OwnerID: "fac-1", SubsectionID: "s1", Name: "Papers",
		ClaimedScore: 4, MaxScore: 5, ReviewerScore: &score, IsVerified: true,
	}
	if err := db.Create(&verified).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	// a claim that slipped past the read still cannot touch the verified row
	late := model.ModuleCriterion{CriterionID: "a", Namespace: "module1", OwnerID: "fac-1", SubsectionID: "s1", Name: "Papers", ClaimedScore: 5, MaxScore: 9}
	result := db.Clauses(claimUpsert).Create(&late)
	if result.Error != nil {
		t.Fatalf("upsert: %v", result.Error)
	}
	if result.RowsAffected != 0 {
		t.Errorf("rows affected = %d, want 0", result.RowsAffected)
	}

	var got model.ModuleCriterion
	if err := db.Where("criterion_id = ?", "a").First(&got).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ClaimedScore != 4 || got.MaxScore != 5 || !got.IsVerified {
		t.Errorf("verified row changed: %+v", got)
	}
}

func TestLegacyAppeal_RaiseAndResolve(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	score := 2.0
	if _, _, err := repo.ModuleCriterion.SaveClaims(ctx, []model.ModuleCriterion{
		{CriterionID: "a", Namespace: "module2", OwnerID: "fac-1", SubsectionID: "s1", Name: "Papers", ClaimedScore: 4, MaxScore: 5, ReviewerScore: &score, IsVerified: true},
	}); err != nil {
		t.Fatalf("SaveClaims: %v", err)
	}

	appeal, err := repo.LegacyAppeal.Raise(ctx, "a", func(c *model.ModuleCriterion) (*model.LegacyAppeal, error) {
		c.IsAppealed = true
		return &model.LegacyAppeal{
			AppealID: "ap-1", Namespace: c.Namespace, CriterionID: c.CriterionID, FacultyID: c.OwnerID,
			SubsectionID: c.SubsectionID, CriterionName: c.Name, ClaimedScore: c.ClaimedScore,
			ReviewerScore: c.ReviewerScore, Reason: "undercounted", Status: model.AppealStatusPending,
		}, nil
	})
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if appeal.AppealID != "ap-1" {
		t.Fatalf("appeal = %+v", appeal)
	}
	if c, _ := repo.ModuleCriterion.GetByID(ctx, "a"); !c.IsAppealed {
		t.Fatal("criterion not marked appealed")
	}

	adjudicated := 4.0
	resolved, criterion, err := repo.LegacyAppeal.Resolve(ctx, "ap-1", func(a *model.LegacyAppeal, c *model.ModuleCriterion) error {
		a.Status = model.AppealStatusCommitteeVerified
		a.VerifiedByCommittee = true
		a.CommitteeScore = &adjudicated
		c.AdjudicatedScore = &adjudicated
		return nil
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != model.AppealStatusCommitteeVerified || criterion.FinalScore() != 4 {
		t.Fatalf("resolved=%+v final=%v", resolved, criterion.FinalScore())
	}

	closed := errors.New("closed")
	if _, _, err := repo.LegacyAppeal.Resolve(ctx, "ap-1", func(a *model.LegacyAppeal, _ *model.ModuleCriterion) error {
		if a.Status != model.AppealStatusPending {
			return closed
		}
		return nil
	}); !errors.Is(err, closed) {
		t.Fatalf("second resolve err = %v", err)
	}

	pending, _ := repo.LegacyAppeal.List(ctx, model.AppealStatusPending)
	all, _ := repo.LegacyAppeal.List(ctx, "")
	mine, _ := repo.LegacyAppeal.ListByFaculty(ctx, "fac-1")
	if len(pending) != 0 || len(all) != 1 || len(mine) != 1 {
		t.Fatalf("pending=%d all=%d mine=%d", len(pending), len(all), len(mine))
	}
}
