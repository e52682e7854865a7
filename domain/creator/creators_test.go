package creator_test

import (
	"context"
	"testing"

	"marketflow/account"
	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/creator"
	"marketflow/persistence"
	"marketflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func creatorsTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("marketflow")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(
		&creator.Creator{}, &account.User{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS

	Expect(db.DS.GormDB(context.Background()).Create(&account.User{
		ID: 200, Name: "rafa", Nickname: "Rafa", CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
}

func creatorsTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateCreator(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	admin := testinfra.BuildSecCtx(10, authority.RoleAdmin)

	t.Run("only admins may manage creators", func(t *testing.T) {
		defer creatorsTestTeardown(t, testDatabase)
		creatorsTestSetup(t, &testDatabase)

		plain := testinfra.BuildSecCtx(11)
		_, err := creator.CreateCreator(&creator.CreatorCreation{Name: "Bruna",
			Type: creator.TypeUgcCreator, ResponsibleID: 200}, plain)
		Expect(err).To(Equal(bizerror.ErrForbidden))
		_, err = creator.UpdateCreator(1, &creator.CreatorUpdating{}, plain)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("responsible user must exist and emails are unique", func(t *testing.T) {
		defer creatorsTestTeardown(t, testDatabase)
		creatorsTestSetup(t, &testDatabase)

		_, err := creator.CreateCreator(&creator.CreatorCreation{Name: "Bruna",
			Type: creator.TypeUgcCreator, ResponsibleID: 424242}, admin)
		Expect(err).ToNot(BeNil())

		record, err := creator.CreateCreator(&creator.CreatorCreation{Name: "Bruna",
			Email: "bruna@example.com", Instagram: "@brunawt", Type: creator.TypeUgcCreator,
			Code: "BRUNAWT", ResponsibleID: 200}, admin)
		Expect(err).To(BeNil())
		Expect(record.IsActive).To(BeTrue())

		_, err = creator.CreateCreator(&creator.CreatorCreation{Name: "Outra",
			Email: "bruna@example.com", Type: creator.TypeInfluenciador, ResponsibleID: 200}, admin)
		Expect(err).To(Equal(bizerror.ErrEmailExisted))

		// updating to a taken email is refused too
		other, err := creator.CreateCreator(&creator.CreatorCreation{Name: "Outra",
			Type: creator.TypeInfluenciador, ResponsibleID: 200}, admin)
		Expect(err).To(BeNil())
		email := "bruna@example.com"
		_, err = creator.UpdateCreator(other.ID, &creator.CreatorUpdating{Email: &email}, admin)
		Expect(err).To(Equal(bizerror.ErrEmailExisted))
	})
}

func TestQueryCreators(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	admin := testinfra.BuildSecCtx(10, authority.RoleAdmin)

	t.Run("filters by search, type and responsible", func(t *testing.T) {
		defer creatorsTestTeardown(t, testDatabase)
		creatorsTestSetup(t, &testDatabase)

		_, err := creator.CreateCreator(&creator.CreatorCreation{Name: "Bruna",
			Instagram: "@brunawt", Type: creator.TypeUgcCreator, ResponsibleID: 200}, admin)
		Expect(err).To(BeNil())
		_, err = creator.CreateCreator(&creator.CreatorCreation{Name: "Carlos",
			Type: creator.TypeAtleta, ResponsibleID: 200}, admin)
		Expect(err).To(BeNil())

		records, err := creator.QueryCreators(&creator.CreatorQuery{Search: "brunawt"}, admin)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].Name).To(Equal("Bruna"))
		Expect(records[0].ResponsibleName).To(Equal("Rafa"))

		records, err = creator.QueryCreators(&creator.CreatorQuery{Type: creator.TypeAtleta}, admin)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].Name).To(Equal("Carlos"))

		records, err = creator.QueryCreators(&creator.CreatorQuery{ResponsibleID: 424242}, admin)
		Expect(err).To(BeNil())
		Expect(records).To(BeEmpty())
	})

	t.Run("deactivation keeps the record resolvable", func(t *testing.T) {
		defer creatorsTestTeardown(t, testDatabase)
		creatorsTestSetup(t, &testDatabase)

		record, err := creator.CreateCreator(&creator.CreatorCreation{Name: "Bruna",
			Type: creator.TypeUgcCreator, ResponsibleID: 200}, admin)
		Expect(err).To(BeNil())

		deactivated, err := creator.DeactivateCreator(record.ID, admin)
		Expect(err).To(BeNil())
		Expect(deactivated.IsActive).To(BeFalse())

		detail, err := creator.DetailCreator(record.ID, admin)
		Expect(err).To(BeNil())
		Expect(detail.IsActive).To(BeFalse())

		toggled, err := creator.ToggleCreatorActive(record.ID, admin)
		Expect(err).To(BeNil())
		Expect(toggled.IsActive).To(BeTrue())
	})
}
