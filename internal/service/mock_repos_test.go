package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

// ── Mock Repositories ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

type mockSchoolRepo struct {
	schools map[string]*model.School
}

func newMockSchoolRepo() *mockSchoolRepo {
	return &mockSchoolRepo{schools: make(map[string]*model.School)}
}

func (m *mockSchoolRepo) Create(_ context.Context, school *model.School) error {
	m.schools[school.SchoolID] = school
	return nil
}
func (m *mockSchoolRepo) GetByID(_ context.Context, id string) (*model.School, error) {
	if s, ok := m.schools[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockSchoolRepo) List(_ context.Context) ([]model.School, error) {
	var result []model.School
	for _, s := range m.schools {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type mockDeptRepo struct {
	departments map[string]*model.Department
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{departments: make(map[string]*model.Department)}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}
func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type mockTimeLogRepo struct {
	logs map[string]*model.TimeLog
	seq  int
	// failUpdateID 指定一条更新必失败的日志，用于验证事务性回滚路径
	failUpdateID string
}

func newMockTimeLogRepo() *mockTimeLogRepo {
	return &mockTimeLogRepo{logs: make(map[string]*model.TimeLog)}
}

var errMockWriteFailed = errors.New("模拟写入失败")

func (m *mockTimeLogRepo) put(log *model.TimeLog) {
	if log.TimeLogID == "" {
		m.seq++
		log.TimeLogID = fmt.Sprintf("log-%d", m.seq)
	}
	cp := *log
	m.logs[log.TimeLogID] = &cp
}

func (m *mockTimeLogRepo) CreateIfNoOpen(_ context.Context, log *model.TimeLog) (bool, error) {
	for _, l := range m.logs {
		if l.UserID == log.UserID && l.LogType == log.LogType && l.TimeOut == nil {
			return false, nil
		}
	}
	m.put(log)
	return true, nil
}

func (m *mockTimeLogRepo) GetByID(_ context.Context, id string) (*model.TimeLog, error) {
	if l, ok := m.logs[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeLogRepo) GetOpen(_ context.Context, userID, logType string) (*model.TimeLog, error) {
	for _, l := range m.logs {
		if l.UserID == userID && l.LogType == logType && l.TimeOut == nil {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeLogRepo) ListByUser(_ context.Context, userID string, from, to *time.Time) ([]model.TimeLog, error) {
	var result []model.TimeLog
	for _, l := range m.logs {
		if l.UserID != userID {
			continue
		}
		if from != nil && l.TimeIn.Before(*from) {
			continue
		}
		if to != nil && !l.TimeIn.Before(*to) {
			continue
		}
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TimeIn.Before(result[j].TimeIn) })
	return result, nil
}

func (m *mockTimeLogRepo) ListExceeding(_ context.Context, regularMax, overtimeMax, extendedMax float64) ([]model.TimeLog, error) {
	var result []model.TimeLog
	for _, l := range m.logs {
		if l.TimeOut == nil {
			continue
		}
		max := regularMax
		switch l.LogType {
		case model.LogTypeOvertime:
			max = overtimeMax
		case model.LogTypeExtendedOvertime:
			max = extendedMax
		}
		if l.TimeOut.Sub(l.TimeIn).Hours() > max {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TimeIn.Before(result[j].TimeIn) })
	return result, nil
}

func (m *mockTimeLogRepo) Update(_ context.Context, log *model.TimeLog) error {
	if log.TimeLogID == m.failUpdateID {
		return errMockWriteFailed
	}
	if _, ok := m.logs[log.TimeLogID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *log
	m.logs[log.TimeLogID] = &cp
	return nil
}

func (m *mockTimeLogRepo) UpdateWithSplit(ctx context.Context, head, tail *model.TimeLog) error {
	if err := m.Update(ctx, head); err != nil {
		return err
	}
	if tail != nil {
		m.put(tail)
	}
	return nil
}

func (m *mockTimeLogRepo) DeleteHard(_ context.Context, id string) error {
	delete(m.logs, id)
	return nil
}

type mockEditRepo struct {
	reqs    map[string]*model.EditRequest
	seq     int
	timeLog *mockTimeLogRepo // List/ListPendingByUser 需要按日志归属过滤
}

func newMockEditRepo(timeLog *mockTimeLogRepo) *mockEditRepo {
	return &mockEditRepo{reqs: make(map[string]*model.EditRequest), timeLog: timeLog}
}

func (m *mockEditRepo) Create(_ context.Context, req *model.EditRequest) error {
	if req.EditRequestID == "" {
		m.seq++
		req.EditRequestID = fmt.Sprintf("edit-%d", m.seq)
	}
	cp := *req
	m.reqs[req.EditRequestID] = &cp
	return nil
}

func (m *mockEditRepo) CreateBatch(ctx context.Context, reqs []model.EditRequest) error {
	for i := range reqs {
		if err := m.Create(ctx, &reqs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockEditRepo) GetByID(_ context.Context, id string) (*model.EditRequest, error) {
	if r, ok := m.reqs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEditRepo) ListByGroup(_ context.Context, groupID string) ([]model.EditRequest, error) {
	var result []model.EditRequest
	for _, r := range m.reqs {
		if r.GroupID != nil && *r.GroupID == groupID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OriginalTimeIn.Before(result[j].OriginalTimeIn) })
	return result, nil
}

func (m *mockEditRepo) List(_ context.Context, status, userID string) ([]model.EditRequest, error) {
	var result []model.EditRequest
	for _, r := range m.reqs {
		if status != "" && r.Status != status {
			continue
		}
		if userID != "" {
			log, ok := m.timeLog.logs[r.TimeLogID]
			if !ok || log.UserID != userID {
				continue
			}
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EditRequestID < result[j].EditRequestID })
	return result, nil
}

func (m *mockEditRepo) ListPendingByUser(ctx context.Context, userID string) ([]model.EditRequest, error) {
	return m.List(ctx, model.EditRequestStatusPending, userID)
}

func (m *mockEditRepo) Update(_ context.Context, req *model.EditRequest) error {
	if _, ok := m.reqs[req.EditRequestID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *req
	m.reqs[req.EditRequestID] = &cp
	return nil
}

// ApplyReviewOutcome 模拟全有或全无：先校验所有日志写入可行，再一并落盘
func (m *mockEditRepo) ApplyReviewOutcome(ctx context.Context, reqs []*model.EditRequest, logs []*model.TimeLog, newLogs []*model.TimeLog, deleteLogIDs []string) error {
	for _, log := range logs {
		if log.TimeLogID == m.timeLog.failUpdateID {
			return errMockWriteFailed
		}
		if _, ok := m.timeLog.logs[log.TimeLogID]; !ok {
			return gorm.ErrRecordNotFound
		}
	}
	for _, log := range logs {
		if err := m.timeLog.Update(ctx, log); err != nil {
			return err
		}
	}
	for _, nl := range newLogs {
		m.timeLog.put(nl)
	}
	for _, id := range deleteLogIDs {
		delete(m.timeLog.logs, id)
	}
	for _, req := range reqs {
		if err := m.Update(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

type mockProgramRepo struct {
	programs map[string]*model.InternshipProgram
	seq      int
	// failUpdateID 非空时，对该计划的更新返回错误，用于验证事务原子性
	failUpdateID string
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*model.InternshipProgram)}
}

func (m *mockProgramRepo) Create(_ context.Context, program *model.InternshipProgram) error {
	if program.ProgramID == "" {
		m.seq++
		program.ProgramID = fmt.Sprintf("program-%d", m.seq)
	}
	cp := *program
	m.programs[program.ProgramID] = &cp
	return nil
}
func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.InternshipProgram, error) {
	if p, ok := m.programs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockProgramRepo) GetByUser(_ context.Context, userID string) (*model.InternshipProgram, error) {
	for _, p := range m.programs {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockProgramRepo) List(_ context.Context, status string) ([]model.InternshipProgram, error) {
	var result []model.InternshipProgram
	for _, p := range m.programs {
		if status == "" || p.Status == status {
			result = append(result, *p)
		}
	}
	return result, nil
}
func (m *mockProgramRepo) Update(_ context.Context, program *model.InternshipProgram) error {
	if m.failUpdateID != "" && program.ProgramID == m.failUpdateID {
		return errMockWriteFailed
	}
	cp := *program
	m.programs[program.ProgramID] = &cp
	return nil
}

type mockCompletionRepo struct {
	reqs    map[string]*model.CompletionRequest
	seq     int
	program *mockProgramRepo
}

func newMockCompletionRepo(program *mockProgramRepo) *mockCompletionRepo {
	return &mockCompletionRepo{reqs: make(map[string]*model.CompletionRequest), program: program}
}

func (m *mockCompletionRepo) Create(_ context.Context, req *model.CompletionRequest) error {
	if req.CompletionRequestID == "" {
		m.seq++
		req.CompletionRequestID = fmt.Sprintf("completion-%d", m.seq)
	}
	cp := *req
	m.reqs[req.CompletionRequestID] = &cp
	return nil
}
func (m *mockCompletionRepo) GetByID(_ context.Context, id string) (*model.CompletionRequest, error) {
	if r, ok := m.reqs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockCompletionRepo) List(_ context.Context, status string) ([]model.CompletionRequest, error) {
	var result []model.CompletionRequest
	for _, r := range m.reqs {
		if status == "" || r.Status == status {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CompletionRequestID < result[j].CompletionRequestID })
	return result, nil
}
func (m *mockCompletionRepo) HasActive(_ context.Context, programID string) (bool, error) {
	for _, r := range m.reqs {
		if r.ProgramID == programID &&
			(r.Status == model.CompletionStatusPending || r.Status == model.CompletionStatusApproved) {
			return true, nil
		}
	}
	return false, nil
}
func (m *mockCompletionRepo) Update(_ context.Context, req *model.CompletionRequest) error {
	cp := *req
	m.reqs[req.CompletionRequestID] = &cp
	return nil
}

// CreateWithProgram 与 ApplyReview 模拟事务语义：先校验全部写入可行再落盘，
// 计划更新失败时申请行不留痕
func (m *mockCompletionRepo) CreateWithProgram(ctx context.Context, req *model.CompletionRequest, program *model.InternshipProgram) error {
	if m.program.failUpdateID != "" && program.ProgramID == m.program.failUpdateID {
		return errMockWriteFailed
	}
	if err := m.Create(ctx, req); err != nil {
		return err
	}
	return m.program.Update(ctx, program)
}

func (m *mockCompletionRepo) ApplyReview(ctx context.Context, req *model.CompletionRequest, program *model.InternshipProgram) error {
	if m.program.failUpdateID != "" && program.ProgramID == m.program.failUpdateID {
		return errMockWriteFailed
	}
	if err := m.Update(ctx, req); err != nil {
		return err
	}
	return m.program.Update(ctx, program)
}

// ── 测试环境装配 ──

type testMocks struct {
	user       *mockUserRepo
	school     *mockSchoolRepo
	dept       *mockDeptRepo
	timeLog    *mockTimeLogRepo
	edit       *mockEditRepo
	program    *mockProgramRepo
	completion *mockCompletionRepo
}

func newTestRepo() (*repository.Repository, *testMocks) {
	timeLog := newMockTimeLogRepo()
	program := newMockProgramRepo()
	mocks := &testMocks{
		user:       newMockUserRepo(),
		school:     newMockSchoolRepo(),
		dept:       newMockDeptRepo(),
		timeLog:    timeLog,
		edit:       newMockEditRepo(timeLog),
		program:    program,
		completion: newMockCompletionRepo(program),
	}
	repo := &repository.Repository{
		User:       mocks.user,
		School:     mocks.school,
		Department: mocks.dept,
		TimeLog:    timeLog,
		Edit:       mocks.edit,
		Program:    mocks.program,
		Completion: mocks.completion,
	}
	return repo, mocks
}

func testPolicy() *config.PolicyConfig {
	return &config.PolicyConfig{
		RequiredDailyHours:  9,
		MaxOvertimeHours:    3,
		ContinuityTolerance: time.Minute,
	}
}

// mkTime 解析 "2026-08-10 08:00" 形式的本地时间
func mkTime(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic("测试时间格式错误: " + s)
	}
	return t
}

func mkTimePtr(s string) *time.Time {
	t := mkTime(s)
	return &t
}

// seedLog 构造并写入一条已关闭日志，返回其 ID
func seedLog(m *mockTimeLogRepo, userID, logType, in, out string) string {
	log := &model.TimeLog{
		UserID:  userID,
		TimeIn:  mkTime(in),
		LogType: logType,
		Status:  model.LogStatusCompleted,
	}
	if out != "" {
		log.TimeOut = mkTimePtr(out)
	} else {
		log.Status = model.LogStatusPending
	}
	if strings.HasPrefix(logType, "overtime") || logType == model.LogTypeExtendedOvertime {
		pending := model.OvertimeStatusPending
		log.OvertimeStatus = &pending
	}
	m.put(log)
	return log.TimeLogID
}
