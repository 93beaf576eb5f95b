package app

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusintern/internal/common"
	"campusintern/internal/domain/application"
	"campusintern/internal/domain/report"
	"campusintern/internal/policy"
)

func ptr(s string) *string { return &s }

func TestApplyRequiresApprovedInternship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company := env.company(t, "Acme")
	student := env.student(t, "Sam")

	posted, err := env.postings.Create(ctx, company, InternshipInput{Title: "Backend"})
	require.NoError(t, err)

	_, err = env.ledger.Apply(ctx, student, posted.ID)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeValidation))

	_, err = env.postings.Moderate(ctx, env.admin(t), posted.ID, "Rejected")
	require.NoError(t, err)
	_, err = env.ledger.Apply(ctx, student, posted.ID)
	assert.True(t, common.Is(err, common.CodeValidation))
	assert.Zero(t, env.store.ApplicationCount())
}

func TestApplyToMissingInternshipIsValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ledger.Apply(context.Background(), env.student(t, "Sam"), common.NewUUID())
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestApplyOnlyForStudents(t *testing.T) {
	env := newTestEnv(t)
	company := env.company(t, "Acme")
	item := env.approvedInternship(t, company, "Backend")

	_, err := env.ledger.Apply(context.Background(), company, item.ID)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeForbidden))
	assert.Equal(t, string(policy.ReasonWrongRole), common.ReasonOf(err))
}

func TestApplySnapshotsCompany(t *testing.T) {
	env := newTestEnv(t)
	company := env.company(t, "Acme")
	item := env.approvedInternship(t, company, "Backend")

	app, err := env.ledger.Apply(context.Background(), env.student(t, "Sam"), item.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, app.Status)
	assert.Equal(t, company.ID, app.CompanyID)
}

func TestDuplicateApplyIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	student := env.student(t, "Sam")

	_, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)
	_, err = env.ledger.Apply(ctx, student, item.ID)
	assert.True(t, common.Is(err, common.CodeConflict))
}

func TestConcurrentDuplicateApplySucceedsOnce(t *testing.T) {
	env := newTestEnv(t)
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	student := env.student(t, "Sam")

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ledger.Apply(context.Background(), student, item.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case common.Is(err, common.CodeConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, env.store.ApplicationCount())
}

func TestWithdrawOnlyBeforeDecision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company := env.company(t, "Acme")
	item := env.approvedInternship(t, company, "Backend")
	student := env.student(t, "Sam")

	app, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)
	env.store.ForceApplicationStatus(app.ID, application.StatusApplied)
	require.NoError(t, env.ledger.Withdraw(ctx, student, app.ID))
	assert.Zero(t, env.store.ApplicationCount())

	for _, status := range []application.Status{application.StatusShortlisted, application.StatusSelected} {
		other := env.student(t, "Stu"+string(status))
		app, err := env.ledger.Apply(ctx, other, item.ID)
		require.NoError(t, err)
		env.store.ForceApplicationStatus(app.ID, status)

		err = env.ledger.Withdraw(ctx, other, app.ID)
		require.Error(t, err)
		assert.True(t, common.Is(err, common.CodeForbidden))
		assert.Equal(t, string(policy.ReasonStatusFrozen), common.ReasonOf(err))
	}
}

func TestWithdrawForeignApplicationIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	owner := env.student(t, "Sam")
	app, err := env.ledger.Apply(ctx, owner, item.ID)
	require.NoError(t, err)

	err = env.ledger.Withdraw(ctx, env.student(t, "Eve"), app.ID)
	assert.Equal(t, string(policy.ReasonNotOwner), common.ReasonOf(err))

	err = env.ledger.Withdraw(ctx, owner, common.NewUUID())
	assert.True(t, common.Is(err, common.CodeNotFound))
}

func TestDecideRejectsUnknownStatusWithoutChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company := env.company(t, "Acme")
	item := env.approvedInternship(t, company, "Backend")
	app, err := env.ledger.Apply(ctx, env.student(t, "Sam"), item.ID)
	require.NoError(t, err)
	_, err = env.ledger.Decide(ctx, company, app.ID, DecisionInput{Notes: ptr("first look")})
	require.NoError(t, err)

	for _, value := range []string{"Interview", "Applied", "", "accepted"} {
		_, err := env.ledger.Decide(ctx, company, app.ID, DecisionInput{Status: ptr(value), Notes: ptr("overwritten")})
		require.Error(t, err, value)
		assert.True(t, common.Is(err, common.CodeValidation), value)
	}

	stored, err := env.applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, stored.Status)
	assert.Equal(t, "first look", stored.CompanyNotes)
}

func TestDecideFollowsLifecycleForCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company := env.company(t, "Acme")
	item := env.approvedInternship(t, company, "Backend")
	app, err := env.ledger.Apply(ctx, env.student(t, "Sam"), item.ID)
	require.NoError(t, err)

	_, err = env.ledger.Decide(ctx, company, app.ID, DecisionInput{Status: ptr("Rejected")})
	require.NoError(t, err)

	_, err = env.ledger.Decide(ctx, company, app.ID, DecisionInput{Status: ptr("Shortlisted")})
	assert.True(t, common.Is(err, common.CodeValidation))

	updated, err := env.ledger.Decide(ctx, company, app.ID, DecisionInput{Notes: ptr("sorry")})
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, updated.Status)
	assert.Equal(t, "sorry", updated.CompanyNotes)

	reopened, err := env.ledger.Decide(ctx, env.admin(t), app.ID, DecisionInput{Status: ptr("Shortlisted")})
	require.NoError(t, err)
	assert.Equal(t, application.StatusShortlisted, reopened.Status)
	assert.Equal(t, "sorry", reopened.CompanyNotes)
}

func TestDecideByForeignCompanyIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	app, err := env.ledger.Apply(ctx, env.student(t, "Sam"), item.ID)
	require.NoError(t, err)

	_, err = env.ledger.Decide(ctx, env.company(t, "Globex"), app.ID, DecisionInput{Status: ptr("Selected")})
	assert.Equal(t, string(policy.ReasonNotOwner), common.ReasonOf(err))

	_, err = env.ledger.Decide(ctx, env.company(t, "Initech"), common.NewUUID(), DecisionInput{Status: ptr("Selected")})
	assert.True(t, common.Is(err, common.CodeNotFound))
}

func TestBlockedCompanyCannotDecide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company := env.company(t, "Acme")
	item := env.approvedInternship(t, company, "Backend")
	app, err := env.ledger.Apply(ctx, env.student(t, "Sam"), item.ID)
	require.NoError(t, err)

	company.Blocked = true
	_, err = env.ledger.Decide(ctx, company, app.ID, DecisionInput{Status: ptr("Selected")})
	assert.Equal(t, string(policy.ReasonBlocked), common.ReasonOf(err))

	views, err := env.ledger.ListForCompany(ctx, company)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c1 := env.company(t, "Acme")
	admin := env.admin(t)
	s := env.student(t, "Sam")

	x, err := env.postings.Create(ctx, c1, InternshipInput{Title: "X"})
	require.NoError(t, err)
	assert.Equal(t, "Pending", string(x.Status))

	x, err = env.postings.Moderate(ctx, admin, x.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, "Approved", string(x.Status))

	a1, err := env.ledger.Apply(ctx, s, x.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, a1.Status)
	assert.Equal(t, c1.ID, a1.CompanyID)

	shortlisted, err := env.ledger.Decide(ctx, c1, a1.ID, DecisionInput{Status: ptr("Shortlisted"), Notes: ptr("good fit")})
	require.NoError(t, err)
	assert.Equal(t, application.StatusShortlisted, shortlisted.Status)
	assert.Equal(t, "good fit", shortlisted.CompanyNotes)

	err = env.ledger.Withdraw(ctx, s, a1.ID)
	assert.True(t, common.Is(err, common.CodeForbidden))

	_, err = env.ledger.Decide(ctx, admin, a1.ID, DecisionInput{Status: ptr("Selected")})
	require.NoError(t, err)

	offers, err := env.reports.CompanyOffers(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []report.CompanyOffer{{CompanyName: "Acme", Count: 1}}, offers)

	stats, err := env.reports.StudentStats(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalApplications)
	assert.Equal(t, 1, stats.OffersReceived)
	assert.Equal(t, 50, stats.ProfileCompletion)
}

func TestResumeAccessMatrix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.company(t, "Acme")
	item := env.approvedInternship(t, owner, "Backend")
	student := env.student(t, "Sam")
	app, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)

	_, err = env.ledger.GetResume(ctx, student, app.ID)
	assert.True(t, common.Is(err, common.CodeNotFound))

	_, err = env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{
		FileName: "cv.pdf", ContentType: "application/pdf", Size: 8, Body: strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)

	allowed := []policy.Actor{student, owner, env.admin(t)}
	for _, actor := range allowed {
		obj, err := env.ledger.GetResume(ctx, actor, app.ID)
		require.NoError(t, err, actor.Role)
		data, _ := io.ReadAll(obj.Body)
		obj.Body.Close()
		assert.Equal(t, "%PDF-1.4", string(data))
	}

	denied := []policy.Actor{env.student(t, "Eve"), env.company(t, "Globex")}
	for _, actor := range denied {
		_, err := env.ledger.GetResume(ctx, actor, app.ID)
		require.Error(t, err)
		assert.True(t, common.Is(err, common.CodeForbidden), actor.Role)
	}
}

func TestUploadResumeReplacesPreviousBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	student := env.student(t, "Sam")
	app, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)

	first, err := env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{FileName: "a.pdf", Size: 8, Body: strings.NewReader("%PDF-1.4")})
	require.NoError(t, err)
	second, err := env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{FileName: "b.pdf", Size: 8, Body: strings.NewReader("%PDF-1.5")})
	require.NoError(t, err)

	assert.NotEqual(t, first.ResumePath, second.ResumePath)
	assert.Equal(t, 1, env.blobs.Len())
}

func TestUploadResumeCompensatesWhenReferenceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	student := env.student(t, "Sam")
	app, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)

	env.store.FailResumeWrites(common.NewError(common.CodeInternal, "db down", nil))
	_, err = env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{FileName: "cv.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")})
	require.Error(t, err)
	assert.Zero(t, env.blobs.Len())

	stored, err := env.applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasResume())
}

func TestUploadResumeStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	student := env.student(t, "Sam")
	app, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)

	env.blobs.putErr = common.NewError(common.CodeStorage, "failed to store resume", errStoreDown)
	_, err = env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{FileName: "cv.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")})
	assert.True(t, common.Is(err, common.CodeStorage))
}

func TestUploadResumeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	student := env.student(t, "Sam")
	app, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)

	_, err = env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{FileName: "big.pdf", ContentType: "application/pdf", Size: 2 << 20, Body: strings.NewReader("x")})
	assert.True(t, common.Is(err, common.CodeValidation))

	_, err = env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{FileName: "cv.exe", ContentType: "application/x-msdownload", Size: 6, Body: strings.NewReader("MZ\x90\x00\x03\x00")})
	assert.True(t, common.Is(err, common.CodeValidation))

	_, err = env.ledger.UploadResume(ctx, env.student(t, "Eve"), app.ID, ResumeUpload{FileName: "cv.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")})
	assert.True(t, common.Is(err, common.CodeForbidden))
}

func TestUploadResumeTypesComeFromContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.approvedInternship(t, env.company(t, "Acme"), "Backend")
	student := env.student(t, "Sam")
	app, err := env.ledger.Apply(ctx, student, item.ID)
	require.NoError(t, err)

	cases := []struct {
		name     string
		declared string
		body     string
		want     string
	}{
		{"plain text", "text/plain", "Sam Student\nGo, SQL\n", "text/plain"},
		{"pdf without declared type", "", "%PDF-1.7\n", "application/pdf"},
		{"html declared as pdf", "application/pdf", "<html><body>cv</body></html>", ""},
		{"text declared as pdf", "application/pdf", "not really a pdf", "text/plain"},
		{"legacy word", "application/octet-stream", "\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1rest", "application/msword"},
		{"docx", docxType, "PK\x03\x04word/document.xml", docxType},
		{"zip claiming pdf", "application/pdf", "PK\x03\x04data", "application/zip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.ledger.UploadResume(ctx, student, app.ID, ResumeUpload{
				FileName: "cv", ContentType: tc.declared, Size: int64(len(tc.body)), Body: strings.NewReader(tc.body),
			})
			if tc.want == "" {
				assert.True(t, common.Is(err, common.CodeValidation), err)
				return
			}
			require.NoError(t, err)
			obj, err := env.ledger.GetResume(ctx, student, app.ID)
			require.NoError(t, err)
			data, _ := io.ReadAll(obj.Body)
			obj.Body.Close()
			assert.Equal(t, tc.want, obj.ContentType)
			assert.Equal(t, tc.body, string(data))
		})
	}
}

func TestRoleScopedListings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.company(t, "Acme")
	globex := env.company(t, "Globex")
	a := env.approvedInternship(t, acme, "Backend")
	g := env.approvedInternship(t, globex, "Frontend")
	sam := env.student(t, "Sam")
	eve := env.student(t, "Eve")

	for _, pair := range []struct {
		actor policy.Actor
		id    common.UUID
	}{{sam, a.ID}, {sam, g.ID}, {eve, a.ID}} {
		_, err := env.ledger.Apply(ctx, pair.actor, pair.id)
		require.NoError(t, err)
	}

	mine, err := env.ledger.ListForStudent(ctx, sam)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	acmeViews, err := env.ledger.ListForCompany(ctx, acme)
	require.NoError(t, err)
	assert.Len(t, acmeViews, 2)

	all, err := env.ledger.ListAll(ctx, env.admin(t))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = env.ledger.ListAll(ctx, acme)
	assert.True(t, common.Is(err, common.CodeForbidden))

	applicants, err := env.ledger.ListForInternship(ctx, acme, a.ID)
	require.NoError(t, err)
	assert.Len(t, applicants, 2)

	_, err = env.ledger.ListForInternship(ctx, globex, a.ID)
	assert.Equal(t, string(policy.ReasonNotOwner), common.ReasonOf(err))

	recent, err := env.ledger.Recent(ctx, globex)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Sam", recent[0].StudentName)

	// newest first: Eve applied last
	require.Equal(t, "Eve", acmeViews[0].StudentName)
	detail, err := env.ledger.Get(ctx, eve, acmeViews[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend", detail.InternshipTitle)
	assert.Equal(t, "Acme", detail.CompanyName)

	_, err = env.ledger.Get(ctx, sam, acmeViews[0].ID)
	assert.Equal(t, string(policy.ReasonNotOwner), common.ReasonOf(err))
}
