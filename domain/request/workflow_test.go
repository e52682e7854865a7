package request_test

import (
	"context"
	"testing"

	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/contenttype"
	"marketflow/domain/request"
	"marketflow/event"
	"marketflow/persistence"
	"marketflow/session"
	"marketflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

type workflowFixture struct {
	contentType *contenttype.ContentType
	step0       *contenttype.WorkflowStep
	step1       *contenttype.WorkflowStep
	step2       *contenttype.WorkflowStep
	briefing    *contenttype.ContentTypeField

	creator   *session.Session
	approver0 *session.Session
	approver1 *session.Session
	approver2 *session.Session

	persistedEvents *[]event.EventRecord
}

func workflowTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) *workflowFixture {
	db := testinfra.StartMysqlTestDatabase("marketflow")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(
		&contenttype.ContentType{}, &contenttype.WorkflowStep{}, &contenttype.ContentTypeField{},
		&request.Request{}, &request.RequestFieldValue{}, &request.FieldValueVersion{},
		&event.EventRecord{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS

	persistedEvents := []event.EventRecord{}
	event.EventPersistCreateFunc = func(record *event.EventRecord, db *gorm.DB) error {
		persistedEvents = append(persistedEvents, *record)
		return nil
	}

	admin := testinfra.BuildSecCtx(1, authority.RoleAdmin)
	ct, err := contenttype.CreateContentType(&contenttype.ContentTypeCreation{Name: "video institucional"}, admin)
	Expect(err).To(BeNil())

	step0, err := contenttype.CreateStep(&contenttype.StepCreation{ContentTypeID: ct.ID,
		Name: "Briefing", StepOrder: 0, ApproverAreaID: idPtr(300),
		ApproverPositions:    []authority.Position{authority.PositionHead, authority.PositionCoordinator},
		RequiredFieldsToExit: []string{"briefing"}}, admin)
	Expect(err).To(BeNil())
	step1, err := contenttype.CreateStep(&contenttype.StepCreation{ContentTypeID: ct.ID,
		Name: "Revisão", StepOrder: 1, ApproverAreaID: idPtr(301)}, admin)
	Expect(err).To(BeNil())
	step2, err := contenttype.CreateStep(&contenttype.StepCreation{ContentTypeID: ct.ID,
		Name: "Aprovação final", StepOrder: 2, ApproverAreaID: idPtr(302),
		IsFinalStep: true}, admin)
	Expect(err).To(BeNil())

	briefing, err := contenttype.CreateField(&contenttype.FieldCreation{ContentTypeID: ct.ID,
		Name: "briefing", Label: "Briefing", FieldType: contenttype.FieldTypeTextarea,
		AssignedStepID: &step0.ID}, admin)
	Expect(err).To(BeNil())

	return &workflowFixture{
		contentType: ct, step0: step0, step1: step1, step2: step2, briefing: briefing,
		creator: testinfra.BuildSecCtx(500),
		approver0: testinfra.WithAreaRole(testinfra.BuildSecCtx(501), 300, "growth",
			authority.PositionHead),
		approver1: testinfra.WithAreaRole(testinfra.BuildSecCtx(502), 301, "copywriting",
			authority.PositionStaff),
		approver2: testinfra.WithAreaRole(testinfra.BuildSecCtx(503), 302, "trafego",
			authority.PositionHead),
		persistedEvents: &persistedEvents,
	}
}

func workflowTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func buildSubmittedRequest(f *workflowFixture) *request.Request {
	record, err := request.CreateRequest(&request.RequestCreation{Title: "lançamento abril",
		Description: "peça para a campanha de abril", ContentTypeID: f.contentType.ID,
		Origin: "INTERNAL"}, f.creator)
	Expect(err).To(BeNil())
	record, err = request.SubmitRequest(record.ID, f.creator)
	Expect(err).To(BeNil())
	Expect(record.Status).To(Equal(request.StatusPending))
	Expect(record.CurrentStepOrder).To(Equal(0))
	return record
}

func fillBriefing(f *workflowFixture, requestId types.ID, s *session.Session) {
	_, err := request.SetFieldValue(requestId, &request.FieldValueSetting{
		FieldID: f.briefing.ID, Value: `"campanha de abril"`}, s)
	Expect(err).To(BeNil())
}

func TestAdvanceStep(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should refuse actors failing the approver predicate", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)

		_, err := request.AdvanceStep(record.ID, f.creator)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		// right area, wrong position
		staff := testinfra.WithAreaRole(testinfra.BuildSecCtx(504), 300, "growth", authority.PositionStaff)
		_, err = request.AdvanceStep(record.ID, staff)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		// SUPER_ADMIN bypasses the predicate but still hits the field gate
		_, err = request.AdvanceStep(record.ID, testinfra.BuildSecCtx(505, authority.RoleSuperAdmin))
		missingErr, ok := err.(*bizerror.ErrMissingRequiredFields)
		Expect(ok).To(BeTrue())
		Expect(missingErr.FieldNames).To(Equal([]string{"briefing"}))
	})

	t.Run("should name the unmet fields and pass once they are filled", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)

		_, err := request.AdvanceStep(record.ID, f.approver0)
		missingErr, ok := err.(*bizerror.ErrMissingRequiredFields)
		Expect(ok).To(BeTrue())
		Expect(missingErr.FieldNames).To(Equal([]string{"briefing"}))

		fillBriefing(f, record.ID, f.approver0)
		advanced, err := request.AdvanceStep(record.ID, f.approver0)
		Expect(err).To(BeNil())
		Expect(advanced.Status).To(Equal(request.StatusInReview))
		Expect(advanced.CurrentStepOrder).To(Equal(1))
		Expect(*advanced.CurrentStepID).To(Equal(f.step1.ID))
	})

	t.Run("advancing the final step approves and detaches the step", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)
		fillBriefing(f, record.ID, f.approver0)

		_, err := request.AdvanceStep(record.ID, f.approver0)
		Expect(err).To(BeNil())
		_, err = request.AdvanceStep(record.ID, f.approver1)
		Expect(err).To(BeNil())
		approved, err := request.AdvanceStep(record.ID, f.approver2)
		Expect(err).To(BeNil())
		Expect(approved.Status).To(Equal(request.StatusApproved))
		Expect(approved.CurrentStepID).To(BeNil())

		// terminal state, never double-applies
		_, err = request.AdvanceStep(record.ID, f.approver2)
		Expect(err).To(Equal(bizerror.ErrInvalidState))
		_, err = request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step0.ID,
			Reason: "ja foi aprovado"}, f.approver2)
		Expect(err).To(Equal(bizerror.ErrInvalidState))
	})

	t.Run("draft and cancelled requests cannot be advanced", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)

		draft, err := request.CreateRequest(&request.RequestCreation{Title: "rascunho",
			Description: "ainda em rascunho aqui", ContentTypeID: f.contentType.ID,
			Origin: "INTERNAL"}, f.creator)
		Expect(err).To(BeNil())
		_, err = request.AdvanceStep(draft.ID, testinfra.BuildSecCtx(505, authority.RoleSuperAdmin))
		Expect(err).To(Equal(bizerror.ErrInvalidState))

		cancelled, err := request.CancelRequest(draft.ID, f.creator)
		Expect(err).To(BeNil())
		Expect(cancelled.Status).To(Equal(request.StatusCancelled))
		_, err = request.AdvanceStep(draft.ID, testinfra.BuildSecCtx(505, authority.RoleSuperAdmin))
		Expect(err).To(Equal(bizerror.ErrInvalidState))
	})
}

func TestRejectToStep(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should enforce the reason and target boundaries", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)
		fillBriefing(f, record.ID, f.approver0)

		// nothing earlier than the first step
		_, err := request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step0.ID,
			Reason: "precisa de ajustes"}, f.approver0)
		Expect(err).To(Equal(bizerror.ErrInvalidTargetStep))

		_, err = request.AdvanceStep(record.ID, f.approver0)
		Expect(err).To(BeNil())

		// 9 characters fail, 10 pass
		_, err = request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step0.ID,
			Reason: "123456789"}, f.approver1)
		Expect(err).To(Equal(bizerror.ErrInvalidReason))

		// same step is not strictly earlier
		_, err = request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step1.ID,
			Reason: "1234567890"}, f.approver1)
		Expect(err).To(Equal(bizerror.ErrInvalidTargetStep))
		// forward is never allowed
		_, err = request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step2.ID,
			Reason: "1234567890"}, f.approver1)
		Expect(err).To(Equal(bizerror.ErrInvalidTargetStep))

		rejected, err := request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step0.ID,
			Reason: "1234567890"}, f.approver1)
		Expect(err).To(BeNil())
		Expect(rejected.Status).To(Equal(request.StatusRejected))
		Expect(rejected.CurrentStepOrder).To(Equal(0))
		Expect(*rejected.CurrentStepID).To(Equal(f.step0.ID))
		Expect(rejected.RejectionReason).To(Equal("1234567890"))
	})

	t.Run("only approvers of the current step may reject", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)
		fillBriefing(f, record.ID, f.approver0)
		_, err := request.AdvanceStep(record.ID, f.approver0)
		Expect(err).To(BeNil())

		_, err = request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step0.ID,
			Reason: "nao sou aprovador"}, f.approver0)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestRequestLifecycleScenario(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("advance, reject back, correct, approve end to end", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)
		fillBriefing(f, record.ID, f.approver0)

		advanced, err := request.AdvanceStep(record.ID, f.approver0)
		Expect(err).To(BeNil())
		Expect(advanced.CurrentStepOrder).To(Equal(1))
		Expect(advanced.Status).To(Equal(request.StatusInReview))

		rejected, err := request.RejectToStep(record.ID, &request.Rejection{TargetStepID: f.step0.ID,
			Reason: "needs rework please"}, f.approver1)
		Expect(err).To(BeNil())
		Expect(rejected.Status).To(Equal(request.StatusRejected))
		Expect(rejected.CurrentStepOrder).To(Equal(0))

		corrected, err := request.CorrectRequest(record.ID, &request.RequestUpdating{}, f.creator)
		Expect(err).To(BeNil())
		Expect(corrected.Status).To(Equal(request.StatusPending))
		Expect(corrected.RejectionReason).To(BeEmpty())

		_, err = request.AdvanceStep(record.ID, f.approver0)
		Expect(err).To(BeNil())
		_, err = request.AdvanceStep(record.ID, f.approver1)
		Expect(err).To(BeNil())
		final, err := request.AdvanceStep(record.ID, f.approver2)
		Expect(err).To(BeNil())
		Expect(final.Status).To(Equal(request.StatusApproved))

		categories := []event.EventCategory{}
		for _, r := range *f.persistedEvents {
			categories = append(categories, r.EventCategory)
		}
		Expect(categories).To(Equal([]event.EventCategory{
			event.EventCategoryCreated, event.EventCategorySubmitted, event.EventCategoryAdvanced,
			event.EventCategoryRejected, event.EventCategoryCorrected, event.EventCategoryAdvanced,
			event.EventCategoryAdvanced, event.EventCategoryAdvanced}))
	})

	t.Run("cancel is creator-only and irreversible", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)

		_, err := request.CancelRequest(record.ID, f.approver0)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		cancelled, err := request.CancelRequest(record.ID, f.creator)
		Expect(err).To(BeNil())
		Expect(cancelled.Status).To(Equal(request.StatusCancelled))

		_, err = request.CancelRequest(record.ID, f.creator)
		Expect(err).To(Equal(bizerror.ErrInvalidState))
	})
}

func TestSetFieldValue(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("every mutation appends exactly one version and replays to the current value", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)

		_, err := request.SetFieldValue(record.ID, &request.FieldValueSetting{
			FieldID: f.briefing.ID, Value: `"v1"`}, f.approver0)
		Expect(err).To(BeNil())
		_, err = request.SetFieldValue(record.ID, &request.FieldValueSetting{
			FieldID: f.briefing.ID, Value: `"v2"`}, f.approver0)
		Expect(err).To(BeNil())
		value, err := request.SetFieldValue(record.ID, &request.FieldValueSetting{
			FieldID: f.briefing.ID, Value: `"v3"`}, f.approver0)
		Expect(err).To(BeNil())
		Expect(value.Value).To(Equal(`"v3"`))

		versions, err := request.QueryFieldVersions(record.ID, f.briefing.ID, f.approver0)
		Expect(err).To(BeNil())
		Expect(len(versions)).To(Equal(3))
		Expect(versions[0].OldValue).To(BeEmpty())
		replayed := ""
		for _, v := range versions {
			Expect(v.OldValue).To(Equal(replayed))
			replayed = v.NewValue
		}
		Expect(replayed).To(Equal(value.Value))
	})

	t.Run("edits outside the resolver's editable set are refused", func(t *testing.T) {
		defer workflowTestTeardown(t, testDatabase)
		f := workflowTestSetup(t, &testDatabase)
		record := buildSubmittedRequest(f)

		// creator is not a member of the step's approver area
		_, err := request.SetFieldValue(record.ID, &request.FieldValueSetting{
			FieldID: f.briefing.ID, Value: `"x"`}, f.creator)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		_, err = request.SetFieldValue(record.ID, &request.FieldValueSetting{
			FieldID: 424242, Value: `"x"`}, f.approver0)
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})
}
