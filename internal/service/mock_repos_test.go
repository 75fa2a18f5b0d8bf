package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
)

// ── Mock Repositories ──
//
// In-memory stand-ins for the gorm repositories. Rows are stored by value and
// copied on the way in and out so a service can never alias stored state.

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
	// incrementErr makes IncrementTotalScore fail once.
	incrementErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	total := int64(len(out))
	if offset >= len(out) {
		return []model.User{}, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, users []model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		if old, ok := m.users[u.UserID]; ok {
			u.TotalScore = old.TotalScore
		}
		m.users[u.UserID] = u
	}
	return nil
}

func (m *mockUserRepo) IncrementTotalScore(_ context.Context, userID string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.incrementErr; err != nil {
		m.incrementErr = nil
		return err
	}
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TotalScore += delta
	m.users[userID] = u
	return nil
}

func (m *mockUserRepo) SetTotalScore(_ context.Context, userID string, total float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.TotalScore = total
		m.users[userID] = u
	}
	return nil
}

// ── roles & rules ──

type mockRoleRepo struct {
	roles map[string]model.Role
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: make(map[string]model.Role)}
}

func (m *mockRoleRepo) List(_ context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRoleRepo) Upsert(_ context.Context, roles []model.Role) error {
	for _, r := range roles {
		m.roles[r.RoleID] = r
	}
	return nil
}

type mockWorkflowRuleRepo struct {
	mu    sync.Mutex
	rules []model.WorkflowRule
}

func newMockWorkflowRuleRepo(rules ...model.WorkflowRule) *mockWorkflowRuleRepo {
	return &mockWorkflowRuleRepo{rules: rules}
}

func (m *mockWorkflowRuleRepo) List(_ context.Context) ([]model.WorkflowRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.WorkflowRule(nil), m.rules...), nil
}

func (m *mockWorkflowRuleRepo) ReplaceAll(_ context.Context, rules []model.WorkflowRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append([]model.WorkflowRule(nil), rules...)
	return nil
}

// ── forms ──

type mockFormRepo struct {
	forms map[string]model.Form
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{forms: make(map[string]model.Form)}
}

func (m *mockFormRepo) List(_ context.Context) ([]model.Form, error) {
	out := make([]model.Form, 0, len(m.forms))
	for _, f := range m.forms {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFormRepo) GetTree(_ context.Context, formID string) (*model.Form, error) {
	f, ok := m.forms[formID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &f, nil
}

func (m *mockFormRepo) GetTask(_ context.Context, formID, criteriaID, taskID string) (*model.FormTask, error) {
	f, ok := m.forms[formID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, c := range f.Criteria {
		if c.CriteriaID != criteriaID {
			continue
		}
		for _, mod := range c.Modules {
			for _, t := range mod.Tasks {
				if t.TaskID == taskID {
					return &t, nil
				}
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFormRepo) Save(_ context.Context, form *model.Form) error {
	m.forms[form.FormID] = *form
	return nil
}

// ── submissions ──

type mockSubmissionRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Submission
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.Submission)}
}

func cloneSubmission(s *model.Submission) *model.Submission {
	out := *s
	out.Assignments = append([]model.Assignment(nil), s.Assignments...)
	out.ActiveRoleKeys = append(model.RoleKeySet(nil), s.ActiveRoleKeys...)
	out.SubmitToRoles = append([]string(nil), s.SubmitToRoles...)
	out.AppealToRoles = append([]string(nil), s.AppealToRoles...)
	if s.LastAppeal != nil {
		la := *s.LastAppeal
		out.LastAppeal = &la
	}
	return &out
}

func (m *mockSubmissionRepo) put(s *model.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s.SubmissionID] = cloneSubmission(s)
}

func (m *mockSubmissionRepo) FindOrCreate(_ context.Context, sub *model.Submission) (*model.Submission, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.subs[sub.SubmissionID]; ok {
		return cloneSubmission(existing), false, nil
	}
	m.subs[sub.SubmissionID] = cloneSubmission(sub)
	return cloneSubmission(sub), true, nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneSubmission(s), nil
}

// Mutate serializes on the mutex, standing in for the row-version check.
func (m *mockSubmissionRepo) Mutate(_ context.Context, id string, fn func(sub *model.Submission) error) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	work := cloneSubmission(s)
	if err := fn(work); err != nil {
		return nil, err
	}
	work.Version = s.Version + 1
	m.subs[id] = cloneSubmission(work)
	return work, nil
}

func (m *mockSubmissionRepo) filter(keep func(s *model.Submission) bool) []model.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Submission{}
	for _, s := range m.subs {
		if keep(s) {
			out = append(out, *cloneSubmission(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmissionID < out[j].SubmissionID })
	return out
}

func (m *mockSubmissionRepo) ListByFaculty(_ context.Context, facultyID, formID, criteriaID string) ([]model.Submission, error) {
	return m.filter(func(s *model.Submission) bool {
		return s.FacultyID == facultyID &&
			(formID == "" || s.FormID == formID) &&
			(criteriaID == "" || s.CriteriaID == criteriaID)
	}), nil
}

func (m *mockSubmissionRepo) ListByActiveRoleKey(_ context.Context, roleKey string, statuses []string) ([]model.Submission, error) {
	return m.filter(func(s *model.Submission) bool {
		if !s.ActiveRoleKeys.Contains(roleKey) {
			return false
		}
		for _, st := range statuses {
			if s.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (m *mockSubmissionRepo) ListByReviewer(_ context.Context, userID string) ([]model.Submission, error) {
	return m.filter(func(s *model.Submission) bool {
		if s.ReviewedByUserID == userID {
			return true
		}
		for _, a := range s.Assignments {
			if a.ReviewerUserID != nil && *a.ReviewerUserID == userID {
				return true
			}
		}
		return false
	}), nil
}

func (m *mockSubmissionRepo) ListByForm(_ context.Context, formID string) ([]model.Submission, error) {
	return m.filter(func(s *model.Submission) bool { return s.FormID == formID }), nil
}

func (m *mockSubmissionRepo) ListAcceptedByFaculty(_ context.Context, facultyID string) ([]model.Submission, error) {
	return m.filter(func(s *model.Submission) bool { return s.FacultyID == facultyID && s.AcceptedAt != nil }), nil
}

type mockSubmissionReviewRepo struct {
	mu      sync.Mutex
	reviews []model.SubmissionReview
}

func newMockSubmissionReviewRepo() *mockSubmissionReviewRepo {
	return &mockSubmissionReviewRepo{}
}

func (m *mockSubmissionReviewRepo) Append(_ context.Context, review *model.SubmissionReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, *review)
	return nil
}

func (m *mockSubmissionReviewRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.SubmissionReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SubmissionReview
	for _, r := range m.reviews {
		if r.SubmissionID == submissionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ── module criteria & committee appeals ──

type mockModuleCriterionRepo struct {
	mu       sync.Mutex
	criteria map[string]model.ModuleCriterion
}

func newMockModuleCriterionRepo() *mockModuleCriterionRepo {
	return &mockModuleCriterionRepo{criteria: make(map[string]model.ModuleCriterion)}
}

func (m *mockModuleCriterionRepo) SaveClaims(_ context.Context, items []model.ModuleCriterion) ([]string, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var saved, skipped []string
	for _, it := range items {
		if old, ok := m.criteria[it.CriterionID]; ok {
			if old.IsVerified {
				skipped = append(skipped, it.CriterionID)
				continue
			}
			old.SubsectionName = it.SubsectionName
			old.ClaimedScore = it.ClaimedScore
			old.MaxScore = it.MaxScore
			old.Evidence = it.Evidence
			old.Description = it.Description
			old.Version++
			m.criteria[it.CriterionID] = old
		} else {
			m.criteria[it.CriterionID] = it
		}
		saved = append(saved, it.CriterionID)
	}
	return saved, skipped, nil
}

func (m *mockModuleCriterionRepo) GetByID(_ context.Context, id string) (*model.ModuleCriterion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.criteria[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *mockModuleCriterionRepo) list(keep func(c *model.ModuleCriterion) bool) []model.ModuleCriterion {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ModuleCriterion{}
	for _, c := range m.criteria {
		if keep(&c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CriterionID < out[j].CriterionID })
	return out
}

func (m *mockModuleCriterionRepo) ListByOwner(_ context.Context, namespace, ownerID string) ([]model.ModuleCriterion, error) {
	return m.list(func(c *model.ModuleCriterion) bool { return c.Namespace == namespace && c.OwnerID == ownerID }), nil
}

func (m *mockModuleCriterionRepo) ListByNamespace(_ context.Context, namespace string) ([]model.ModuleCriterion, error) {
	return m.list(func(c *model.ModuleCriterion) bool { return c.Namespace == namespace }), nil
}

func (m *mockModuleCriterionRepo) Mutate(_ context.Context, id string, fn func(c *model.ModuleCriterion) error) (*model.ModuleCriterion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.criteria[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.Version++
	m.criteria[id] = c
	return &c, nil
}

// mockLegacyAppealRepo shares the criterion store so Raise and Resolve can
// update both rows together.
type mockLegacyAppealRepo struct {
	criteria *mockModuleCriterionRepo
	appeals  map[string]model.LegacyAppeal
	order    []string
}

func newMockLegacyAppealRepo(criteria *mockModuleCriterionRepo) *mockLegacyAppealRepo {
	return &mockLegacyAppealRepo{criteria: criteria, appeals: make(map[string]model.LegacyAppeal)}
}

func (m *mockLegacyAppealRepo) Raise(_ context.Context, criterionID string, build func(c *model.ModuleCriterion) (*model.LegacyAppeal, error)) (*model.LegacyAppeal, error) {
	m.criteria.mu.Lock()
	defer m.criteria.mu.Unlock()
	c, ok := m.criteria.criteria[criterionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	appeal, err := build(&c)
	if err != nil {
		return nil, err
	}
	c.Version++
	m.criteria.criteria[criterionID] = c
	m.appeals[appeal.AppealID] = *appeal
	m.order = append(m.order, appeal.AppealID)
	return appeal, nil
}

func (m *mockLegacyAppealRepo) Resolve(_ context.Context, appealID string, apply func(a *model.LegacyAppeal, c *model.ModuleCriterion) error) (*model.LegacyAppeal, *model.ModuleCriterion, error) {
	m.criteria.mu.Lock()
	defer m.criteria.mu.Unlock()
	a, ok := m.appeals[appealID]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	c, ok := m.criteria.criteria[a.CriterionID]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	if err := apply(&a, &c); err != nil {
		return nil, nil, err
	}
	a.Version++
	c.Version++
	m.appeals[appealID] = a
	m.criteria.criteria[c.CriterionID] = c
	return &a, &c, nil
}

func (m *mockLegacyAppealRepo) GetByID(_ context.Context, id string) (*model.LegacyAppeal, error) {
	a, ok := m.appeals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *mockLegacyAppealRepo) List(_ context.Context, status string) ([]model.LegacyAppeal, error) {
	out := []model.LegacyAppeal{}
	for _, id := range m.order {
		if a := m.appeals[id]; status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockLegacyAppealRepo) ListByFaculty(_ context.Context, facultyID string) ([]model.LegacyAppeal, error) {
	out := []model.LegacyAppeal{}
	for _, id := range m.order {
		if a := m.appeals[id]; a.FacultyID == facultyID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ── aggregate ──

type mockRepos struct {
	user      *mockUserRepo
	role      *mockRoleRepo
	rules     *mockWorkflowRuleRepo
	form      *mockFormRepo
	sub       *mockSubmissionRepo
	review    *mockSubmissionReviewRepo
	criterion *mockModuleCriterionRepo
	appeal    *mockLegacyAppealRepo
}

func newMockRepos(rules ...model.WorkflowRule) (*repository.Repository, *mockRepos) {
	criteria := newMockModuleCriterionRepo()
	m := &mockRepos{
		user:      newMockUserRepo(),
		role:      newMockRoleRepo(),
		rules:     newMockWorkflowRuleRepo(rules...),
		form:      newMockFormRepo(),
		sub:       newMockSubmissionRepo(),
		review:    newMockSubmissionReviewRepo(),
		criterion: criteria,
		appeal:    newMockLegacyAppealRepo(criteria),
	}
	repo := &repository.Repository{
		User:             m.user,
		Role:             m.role,
		WorkflowRule:     m.rules,
		Form:             m.form,
		Submission:       m.sub,
		SubmissionReview: m.review,
		ModuleCriterion:  m.criterion,
		LegacyAppeal:     m.appeal,
	}
	return repo, m
}
