package account_test

import (
	"context"
	"testing"

	"marketflow/account"
	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/orgarea"
	"marketflow/persistence"
	"marketflow/testinfra"

	. "github.com/onsi/gomega"
)

func accountsTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("marketflow")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &orgarea.Area{}, &orgarea.AreaMember{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func accountsTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("only admins create users, only super admins mint super admins", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		_, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "s3cr3t"},
			testinfra.BuildSecCtx(100))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		_, err = account.CreateUser(&account.UserCreation{Name: "ana", Secret: "s3cr3t",
			Role: authority.RoleSuperAdmin}, testinfra.BuildSecCtx(100, authority.RoleAdmin))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		info, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "s3cr3t",
			Nickname: "Ana", Role: authority.RoleAdmin}, testinfra.BuildSecCtx(100, authority.RoleSuperAdmin))
		Expect(err).To(BeNil())
		Expect(info.ID).ToNot(BeZero())
		Expect(info.Name).To(Equal("ana"))
		Expect(info.Role).To(Equal(authority.RoleAdmin))

		// secret is stored hashed
		stored := account.User{ID: info.ID}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&stored).First(&stored).Error).To(BeNil())
		Expect(stored.Secret).To(Equal(account.HashSha256("s3cr3t")))

		_, err = account.CreateUser(&account.UserCreation{Name: "ana", Secret: "another"},
			testinfra.BuildSecCtx(100, authority.RoleAdmin))
		Expect(err).ToNot(BeNil())
	})
}

func TestUpdateUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("users may rename themselves, admins may rename anyone", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		info, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "s3cr3t"},
			testinfra.BuildSecCtx(100, authority.RoleAdmin))
		Expect(err).To(BeNil())

		Expect(account.UpdateUser(info.ID, &account.UserUpdation{Nickname: "Ana Beatriz"},
			testinfra.BuildSecCtx(info.ID))).To(BeNil())

		Expect(account.UpdateUser(info.ID, &account.UserUpdation{Nickname: "AB"},
			testinfra.BuildSecCtx(999))).To(Equal(bizerror.ErrForbidden))

		Expect(account.UpdateUser(info.ID, &account.UserUpdation{Nickname: "AB"},
			testinfra.BuildSecCtx(999, authority.RoleAdmin))).To(BeNil())

		users, err := account.QueryUsers(testinfra.BuildSecCtx(100, authority.RoleAdmin))
		Expect(err).To(BeNil())
		Expect(len(*users)).To(Equal(1))
		Expect((*users)[0].Nickname).To(Equal("AB"))
	})
}

func TestUpdateBasicAuthSecret(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should verify the original secret", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		info, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "s3cr3t"},
			testinfra.BuildSecCtx(100, authority.RoleAdmin))
		Expect(err).To(BeNil())

		err = account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{
			OriginalSecret: "wrong", NewSecret: "newpass"}, testinfra.BuildSecCtx(info.ID))
		Expect(err).To(Equal(bizerror.ErrInvalidPassword))

		err = account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{
			OriginalSecret: "s3cr3t", NewSecret: "newpass"}, testinfra.BuildSecCtx(info.ID))
		Expect(err).To(BeNil())

		stored := account.User{ID: info.ID}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&stored).First(&stored).Error).To(BeNil())
		Expect(stored.Secret).To(Equal(account.HashSha256("newpass")))
	})
}

func TestLoadPerms(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should combine global role and area memberships", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		adminCtx := testinfra.BuildSecCtx(100, authority.RoleSuperAdmin)
		info, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "s3cr3t",
			Role: authority.RoleAdmin}, adminCtx)
		Expect(err).To(BeNil())

		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, adminCtx)
		Expect(err).To(BeNil())
		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: info.ID,
			Position: authority.PositionHead}, adminCtx)
		Expect(err).To(BeNil())

		perms, areaRoles := account.LoadPerms(info.ID)
		Expect(perms).To(Equal(authority.Permissions{authority.RoleAdmin}))
		Expect(areaRoles).To(Equal(authority.AreaRoles{
			{AreaID: area.ID, AreaSlug: "growth", Position: authority.PositionHead}}))
	})
}
