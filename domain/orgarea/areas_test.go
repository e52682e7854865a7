package orgarea_test

import (
	"context"
	"testing"

	"marketflow/account"
	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/orgarea"
	"marketflow/persistence"
	"marketflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func areasTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("marketflow")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(
		&orgarea.Area{}, &orgarea.AreaMember{}, &account.User{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func areasTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateArea(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should reject non-admin users", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		_, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"},
			testinfra.BuildSecCtx(100))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should reject malformed slugs", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		_, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "Growth Team"},
			testinfra.BuildSecCtx(100, authority.RoleAdmin))
		Expect(err).To(Equal(bizerror.ErrInvalidArguments))
	})

	t.Run("should create area and reject duplicated slug", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth",
			Description: "paid media"}, secCtx)
		Expect(err).To(BeNil())
		Expect(area.ID).ToNot(BeZero())
		Expect(area.Name).To(Equal("Growth"))
		Expect(area.IsActive).To(BeTrue())

		_, err = orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth 2", Slug: "growth"}, secCtx)
		Expect(err).To(Equal(bizerror.ErrSlugExisted))

		areas, err := orgarea.QueryAreas(secCtx)
		Expect(err).To(BeNil())
		Expect(len(areas)).To(Equal(1))
		Expect(areas[0].Slug).To(Equal("growth"))
	})
}

func TestToggleAreaActive(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("inactive areas keep their data but drop out of listings", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, secCtx)
		Expect(err).To(BeNil())

		toggled, err := orgarea.ToggleAreaActive(area.ID, secCtx)
		Expect(err).To(BeNil())
		Expect(toggled.IsActive).To(BeFalse())

		areas, err := orgarea.QueryAreas(secCtx)
		Expect(err).To(BeNil())
		Expect(len(areas)).To(Equal(0))

		detail, err := orgarea.DetailArea(area.ID, secCtx)
		Expect(err).To(BeNil())
		Expect(detail.Name).To(Equal("Growth"))
	})
}

func TestAddMember(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should reject a second HEAD or COORDINATOR in the same area", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, secCtx)
		Expect(err).To(BeNil())

		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 10,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())

		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 11,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(Equal(bizerror.ErrPositionOccupied))

		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 11,
			Position: authority.PositionCoordinator}, secCtx)
		Expect(err).To(BeNil())
		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 12,
			Position: authority.PositionCoordinator}, secCtx)
		Expect(err).To(Equal(bizerror.ErrPositionOccupied))

		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 12,
			Position: authority.PositionStaff}, secCtx)
		Expect(err).To(BeNil())
		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 13,
			Position: authority.PositionStaff}, secCtx)
		Expect(err).To(BeNil())
	})

	t.Run("should reject duplicated membership", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, secCtx)
		Expect(err).To(BeNil())

		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 10,
			Position: authority.PositionStaff}, secCtx)
		Expect(err).To(BeNil())
		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 10,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(Equal(bizerror.ErrMemberExisted))
	})

	t.Run("should reject membership of unknown area", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		_, err := orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: 404, UserID: 10,
			Position: authority.PositionStaff}, secCtx)
		Expect(err).ToNot(BeNil())
	})
}

func TestUpdateMemberPosition(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("promoting to an occupied position demotes the current holder", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, secCtx)
		Expect(err).To(BeNil())

		head, err := orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 10,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())
		staff, err := orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 11,
			Position: authority.PositionStaff}, secCtx)
		Expect(err).To(BeNil())

		promoted, err := orgarea.UpdateMemberPosition(staff.ID,
			&orgarea.MemberPositionUpdating{Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())
		Expect(promoted.Position).To(Equal(authority.PositionHead))

		members, err := orgarea.QueryAreaMembers(area.ID, secCtx)
		Expect(err).To(BeNil())
		Expect(len(members)).To(Equal(2))
		byId := map[types.ID]authority.Position{}
		for _, m := range members {
			byId[m.ID] = m.Position
		}
		Expect(byId[head.ID]).To(Equal(authority.PositionStaff))
		Expect(byId[staff.ID]).To(Equal(authority.PositionHead))
	})

	t.Run("keeping the same member in the position is a no-op demotion-wise", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, secCtx)
		Expect(err).To(BeNil())
		head, err := orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 10,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())

		again, err := orgarea.UpdateMemberPosition(head.ID,
			&orgarea.MemberPositionUpdating{Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())
		Expect(again.Position).To(Equal(authority.PositionHead))
	})
}

func TestRemoveMember(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should remove member and free the position", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		area, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, secCtx)
		Expect(err).To(BeNil())
		head, err := orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 10,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())

		Expect(orgarea.RemoveMember(head.ID, secCtx)).To(BeNil())

		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: area.ID, UserID: 11,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())
	})
}

func TestLoadAreaRoles(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should only collect memberships of active areas", func(t *testing.T) {
		defer areasTestTeardown(t, testDatabase)
		areasTestSetup(t, &testDatabase)

		secCtx := testinfra.BuildSecCtx(100, authority.RoleAdmin)
		growth, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Growth", Slug: "growth"}, secCtx)
		Expect(err).To(BeNil())
		content, err := orgarea.CreateArea(&orgarea.AreaCreation{Name: "Content", Slug: "content"}, secCtx)
		Expect(err).To(BeNil())

		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: growth.ID, UserID: 10,
			Position: authority.PositionHead}, secCtx)
		Expect(err).To(BeNil())
		_, err = orgarea.AddMember(&orgarea.AreaMemberCreation{AreaID: content.ID, UserID: 10,
			Position: authority.PositionStaff}, secCtx)
		Expect(err).To(BeNil())

		_, err = orgarea.ToggleAreaActive(content.ID, secCtx)
		Expect(err).To(BeNil())

		roles, err := orgarea.LoadAreaRoles(10)
		Expect(err).To(BeNil())
		Expect(len(roles)).To(Equal(1))
		Expect(roles[0]).To(Equal(authority.AreaRole{AreaID: growth.ID, AreaSlug: "growth",
			Position: authority.PositionHead}))
	})
}
