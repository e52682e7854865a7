package adflow_test

import (
	"context"
	"fmt"
	"testing"

	"marketflow/bizerror"
	"marketflow/domain/adflow"
	"marketflow/testinfra"

	. "github.com/onsi/gomega"
)

func buildProductionVideo(t *testing.T, f *adflowFixture, testDatabase *testinfra.TestDatabase) (*adflow.AdProject, *adflow.AdVideo) {
	project := buildDraftProject(f)
	video := buildVideo(f, project.ID, "Sono Profundo")
	forcePhase(testDatabase, project, video, adflow.PhaseProducao)
	return project, video
}

func TestCreateDeliverable(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should refuse before the production phase", func(t *testing.T) {
		defer adflowTestTeardown(t, testDatabase)
		f := adflowTestSetup(t, &testDatabase)
		project := buildDraftProject(f)
		video := buildVideo(f, project.ID, "Sono Profundo")

		_, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/cut.mp4", Tempo: "T30S", Tamanho: "S9X16"}, f.producer)
		Expect(err).To(Equal(bizerror.ErrPhaseLocked))
	})

	t.Run("should cap at ten cuts and fill hook number gaps", func(t *testing.T) {
		defer adflowTestTeardown(t, testDatabase)
		f := adflowTestSetup(t, &testDatabase)
		_, video := buildProductionVideo(t, f, testDatabase)

		created := []*adflow.AdDeliverable{}
		for i := 0; i < 10; i++ {
			d, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
				FileKey: fmt.Sprintf("ads/cut-%d.mp4", i), Tempo: "T30S", Tamanho: "S9X16"}, f.producer)
			Expect(err).To(BeNil())
			Expect(d.HookNumber).To(Equal(i + 1))
			Expect(d.VersionNumber).To(Equal(1))
			created = append(created, d)
		}

		_, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/one-too-many.mp4", Tempo: "T30S", Tamanho: "S9X16"}, f.producer)
		Expect(err).To(Equal(bizerror.ErrInvalidState))

		Expect(adflow.DeleteDeliverable(created[2].ID, f.producer)).To(BeNil())
		refill, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/refill.mp4", Tempo: "T15S", Tamanho: "S1X1"}, f.producer)
		Expect(err).To(BeNil())
		Expect(refill.HookNumber).To(Equal(3))
	})

	t.Run("should freeze the set once AD numbers exist", func(t *testing.T) {
		defer adflowTestTeardown(t, testDatabase)
		f := adflowTestSetup(t, &testDatabase)
		_, video := buildProductionVideo(t, f, testDatabase)

		d, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/cut.mp4", Tempo: "T30S", Tamanho: "S9X16"}, f.producer)
		Expect(err).To(BeNil())

		gdb := testDatabase.DS.GormDB(context.Background())
		Expect(gdb.Model(&adflow.AdDeliverable{ID: d.ID}).Update("ad_number", 1).Error).To(BeNil())

		_, err = adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/late.mp4", Tempo: "T15S", Tamanho: "S1X1"}, f.producer)
		Expect(err).To(Equal(bizerror.ErrAdNumbersAssigned))

		tempo := "T60S"
		_, err = adflow.UpdateDeliverable(d.ID, &adflow.DeliverableUpdating{Tempo: &tempo}, f.producer)
		Expect(err).To(Equal(bizerror.ErrAdNumbersAssigned))

		Expect(adflow.DeleteDeliverable(d.ID, f.producer)).To(Equal(bizerror.ErrAdNumbersAssigned))
	})
}

func TestUpdateDeliverable(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should edit unnumbered cuts", func(t *testing.T) {
		defer adflowTestTeardown(t, testDatabase)
		f := adflowTestSetup(t, &testDatabase)
		_, video := buildProductionVideo(t, f, testDatabase)

		d, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/cut.mp4", Tempo: "T30S", Tamanho: "S9X16"}, f.producer)
		Expect(err).To(BeNil())

		tempo := "T60S"
		mostra := true
		updated, err := adflow.UpdateDeliverable(d.ID, &adflow.DeliverableUpdating{
			Tempo: &tempo, MostraProduto: &mostra}, f.producer)
		Expect(err).To(BeNil())
		Expect(updated.Tempo).To(Equal("T60S"))
		Expect(updated.MostraProduto).To(BeTrue())
	})
}

func TestUpdateNomenclatura(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should gate on the trafego action and the video's approval", func(t *testing.T) {
		defer adflowTestTeardown(t, testDatabase)
		f := adflowTestSetup(t, &testDatabase)
		_, video := buildProductionVideo(t, f, testDatabase)

		d, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/cut.mp4", Tempo: "T30S", Tamanho: "S9X16"}, f.producer)
		Expect(err).To(BeNil())

		edited := "AD0001_CUSTOM"
		_, err = adflow.UpdateNomenclatura(d.ID, &adflow.NomenclaturaUpdating{
			NomenclaturaEditada: &edited}, f.producer)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		_, err = adflow.UpdateNomenclatura(d.ID, &adflow.NomenclaturaUpdating{
			NomenclaturaEditada: &edited}, f.trafegoCoord)
		Expect(err).To(Equal(bizerror.ErrInvalidState))

		gdb := testDatabase.DS.GormDB(context.Background())
		Expect(gdb.Model(&adflow.AdDeliverable{ID: d.ID}).Update("ad_number", 1).Error).To(BeNil())

		_, err = adflow.UpdateNomenclatura(d.ID, &adflow.NomenclaturaUpdating{
			NomenclaturaEditada: &edited}, f.trafegoCoord)
		Expect(err).To(Equal(bizerror.ErrInvalidState))

		Expect(gdb.Model(&adflow.AdVideo{ID: video.ID}).
			Update("phase_status", adflow.PhaseStatusAprovado).Error).To(BeNil())

		version := 2
		updated, err := adflow.UpdateNomenclatura(d.ID, &adflow.NomenclaturaUpdating{
			NomenclaturaEditada: &edited, VersionNumber: &version}, f.trafegoCoord)
		Expect(err).To(BeNil())
		Expect(updated.NomenclaturaEditada).To(Equal("AD0001_CUSTOM"))
		Expect(updated.VersionNumber).To(Equal(2))

		moved := adflow.AdVideo{ID: video.ID}
		Expect(gdb.Where(&moved).First(&moved).Error).To(BeNil())
		Expect(moved.PhaseStatus).To(Equal(adflow.PhaseStatusNomenclatura))
	})
}

func TestRegenerateNomenclatura(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should rewrite generated names from current attributes", func(t *testing.T) {
		defer adflowTestTeardown(t, testDatabase)
		f := adflowTestSetup(t, &testDatabase)
		_, video := buildProductionVideo(t, f, testDatabase)

		d, err := adflow.CreateDeliverable(&adflow.DeliverableCreation{VideoID: video.ID,
			FileKey: "ads/cut.mp4", Tempo: "T30S", Tamanho: "S9X16"}, f.producer)
		Expect(err).To(BeNil())

		gdb := testDatabase.DS.GormDB(context.Background())
		Expect(gdb.Model(&adflow.AdDeliverable{ID: d.ID}).Update("ad_number", 5).Error).To(BeNil())

		_, err = adflow.RegenerateNomenclatura(video.ID, f.producer)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		records, err := adflow.RegenerateNomenclatura(video.ID, f.trafegoCoord)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].NomenclaturaGerada).To(HavePrefix("AD0005_"))
		Expect(records[0].NomenclaturaGerada).To(HaveSuffix("_OSLO_NO1_SONOPROFUNDO_SONO_UGC_VID_30S_9X16"))
	})
}
