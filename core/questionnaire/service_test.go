package questionnaire_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/questionnaire"
	"github.com/edufacil/efs/core/user"
	inmemdb "github.com/edufacil/efs/storage/database/inmem"
)

func setup(t *testing.T) (questionnaire.Service, user.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatal(err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	svc := questionnaire.NewService(db, inmemdb.NewQuestionnaireRepository(db), usrRepo)
	return svc, usrRepo
}

func createStudent(t *testing.T, repo user.Repository, sid string, credits int) user.User {
	t.Helper()

	usr := user.User{
		SID:     sid,
		Email:   sid + "@test.test",
		Roles:   user.StudentRoles,
		Credits: credits,
	}
	usr.SetActive(true)
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatal(err)
	}
	return usr
}

func validNew() questionnaire.NewQuestionnaire {
	return questionnaire.NewQuestionnaire{
		Title:           "Study habits survey",
		Link:            "https://forms.example.com/abc123",
		TargetResponses: 2,
	}
}

func TestCreateDeductsCredit(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	createStudent(t, usrRepo, "20111111", 3)

	q, err := svc.Create(ctx, "20111111", validNew())
	assert.NoError(t, err)
	assert.Equal(t, questionnaire.StatusActive, q.Status)
	assert.Equal(t, "20111111", q.SID)

	usr, err := usrRepo.GetUser(ctx, user.GetFilter{SID: "20111111"})
	assert.NoError(t, err)
	assert.Equal(t, 2, usr.Credits)
}

func TestCreateRequiresCredit(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	createStudent(t, usrRepo, "20222222", 0)

	_, err := svc.Create(ctx, "20222222", validNew())
	assert.IsType(t, &core.ValidationError{}, err)
	assert.EqualError(t, err, user.ErrInsufficientCredits.Error())

	// balance untouched
	usr, _ := usrRepo.GetUser(ctx, user.GetFilter{SID: "20222222"})
	assert.Equal(t, 0, usr.Credits)
}

func TestCreateOneActivePerUser(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	createStudent(t, usrRepo, "20333333", 3)

	_, err := svc.Create(ctx, "20333333", validNew())
	assert.NoError(t, err)

	_, err = svc.Create(ctx, "20333333", validNew())
	assert.IsType(t, &core.ValidationError{}, err)
	assert.EqualError(t, err, questionnaire.ErrActiveExists.Error())

	// only the first create was charged
	usr, _ := usrRepo.GetUser(ctx, user.GetFilter{SID: "20333333"})
	assert.Equal(t, 2, usr.Credits)
}

func TestFillAwardsCreditAndCompletes(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	createStudent(t, usrRepo, "20444444", 3)
	createStudent(t, usrRepo, "20555555", 3)
	createStudent(t, usrRepo, "20666666", 3)

	q, err := svc.Create(ctx, "20444444", validNew())
	assert.NoError(t, err)

	q, err = svc.Fill(ctx, q.ID, "20555555")
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Responses)
	assert.Equal(t, questionnaire.StatusActive, q.Status)

	filler, _ := usrRepo.GetUser(ctx, user.GetFilter{SID: "20555555"})
	assert.Equal(t, 4, filler.Credits)

	// second fill reaches the target
	q, err = svc.Fill(ctx, q.ID, "20666666")
	assert.NoError(t, err)
	assert.Equal(t, 2, q.Responses)
	assert.Equal(t, questionnaire.StatusCompleted, q.Status)
}

func TestFillRules(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	createStudent(t, usrRepo, "20777777", 3)
	createStudent(t, usrRepo, "20888888", 3)

	q, err := svc.Create(ctx, "20777777", validNew())
	assert.NoError(t, err)

	// creator cannot fill their own
	_, err = svc.Fill(ctx, q.ID, "20777777")
	assert.EqualError(t, err, questionnaire.ErrOwnQuestionnaire.Error())

	// double fill rejected
	_, err = svc.Fill(ctx, q.ID, "20888888")
	assert.NoError(t, err)
	_, err = svc.Fill(ctx, q.ID, "20888888")
	assert.EqualError(t, err, questionnaire.ErrAlreadyFilled.Error())

	// the reward was only paid once
	filler, _ := usrRepo.GetUser(ctx, user.GetFilter{SID: "20888888"})
	assert.Equal(t, 4, filler.Credits)
}

func TestFillUnknownQuestionnaire(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	createStudent(t, usrRepo, "20999999", 3)

	_, err := svc.Fill(ctx, "b2f7f5e0-4a3d-4b6e-9f59-1f4d9a8a1f00", "20999999")
	assert.EqualError(t, err, questionnaire.ErrNotFound.Error())
}

func TestQueryActiveNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, usrRepo := setup(t)
	createStudent(t, usrRepo, "21111111", 3)
	createStudent(t, usrRepo, "21222222", 3)

	q1, err := svc.Create(ctx, "21111111", validNew())
	assert.NoError(t, err)
	q2, err := svc.Create(ctx, "21222222", validNew())
	assert.NoError(t, err)

	qs, err := svc.QueryActive(ctx)
	assert.NoError(t, err)
	if assert.Len(t, qs, 2) {
		ids := []string{qs[0].ID, qs[1].ID}
		assert.Contains(t, ids, q1.ID)
		assert.Contains(t, ids, q2.ID)
	}
}
