package questionnaire

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("questionnaire not found")
	ErrActiveExists     = errors.New("you already have an active questionnaire")
	ErrOwnQuestionnaire = errors.New("you cannot fill your own questionnaire")
	ErrAlreadyFilled    = errors.New("you already filled this questionnaire")
	ErrNotActive        = errors.New("this questionnaire is no longer active")
)

type (
	Repository interface {
		CreateQuestionnaire(ctx context.Context, q Questionnaire, exec ...core.DBExecutor) (Questionnaire, error)
		QueryActiveQuestionnaires(ctx context.Context, exec ...core.DBExecutor) ([]Questionnaire, error)
		QueryQuestionnairesBySID(ctx context.Context, sid string, exec ...core.DBExecutor) ([]Questionnaire, error)
		GetQuestionnaire(ctx context.Context, id string, exec ...core.DBExecutor) (Questionnaire, error)
		// GetActiveBySID returns ErrNotFound when the user has no active questionnaire.
		GetActiveBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (Questionnaire, error)
		UpdateQuestionnaire(ctx context.Context, q Questionnaire, exec ...core.DBExecutor) (Questionnaire, error)
		CountQuestionnaires(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	// CreditAdjuster applies credit deltas to user balances; the user
	// repository satisfies it.
	CreditAdjuster interface {
		AdjustCredits(ctx context.Context, sid string, delta int, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		// Create posts a questionnaire, deducting the posting cost in the
		// same transaction.
		Create(ctx context.Context, sid string, nq NewQuestionnaire) (Questionnaire, error)
		QueryActive(ctx context.Context) ([]Questionnaire, error)
		Mine(ctx context.Context, sid string) ([]Questionnaire, error)
		// Fill records sid's response and awards the fill reward in the
		// same transaction; reaching the target completes the questionnaire.
		Fill(ctx context.Context, id, sid string) (Questionnaire, error)
		Count(ctx context.Context) (int, error)
	}

	service struct {
		db      core.DB
		repo    Repository
		credits CreditAdjuster
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, credits CreditAdjuster) Service {
	return &service{db: db, repo: repo, credits: credits}
}

func (svc *service) Create(ctx context.Context, sid string, nq NewQuestionnaire) (Questionnaire, error) {
	tx, err := svc.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return Questionnaire{}, errors.Wrap(err, "beginning tx")
	}
	defer tx.Rollback()

	if _, err = svc.repo.GetActiveBySID(ctx, sid, tx); err == nil {
		return Questionnaire{}, core.NewValidationError(ErrActiveExists)
	} else if errors.Cause(err) != ErrNotFound {
		return Questionnaire{}, err
	}

	if _, err = svc.credits.AdjustCredits(ctx, sid, -CreateCost, tx); err != nil {
		if errors.Cause(err) == user.ErrInsufficientCredits {
			return Questionnaire{}, core.NewValidationError(err, core.FieldError{Field: "credits", Error: err.Error()})
		}
		return Questionnaire{}, err
	}

	now := time.Now().UTC()
	q := Questionnaire{
		ID:              uuid.NewString(),
		SID:             sid,
		Title:           nq.Title,
		Description:     nq.Description,
		Link:            nq.Link,
		TargetResponses: nq.TargetResponses,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if q, err = svc.repo.CreateQuestionnaire(ctx, q, tx); err != nil {
		return Questionnaire{}, err
	}
	return q, errors.Wrap(tx.Commit(), "committing tx")
}

func (svc *service) QueryActive(ctx context.Context) ([]Questionnaire, error) {
	return svc.repo.QueryActiveQuestionnaires(ctx)
}

func (svc *service) Mine(ctx context.Context, sid string) ([]Questionnaire, error) {
	return svc.repo.QueryQuestionnairesBySID(ctx, sid)
}

func (svc *service) Fill(ctx context.Context, id, sid string) (Questionnaire, error) {
	tx, err := svc.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return Questionnaire{}, errors.Wrap(err, "beginning tx")
	}
	defer tx.Rollback()

	q, err := svc.repo.GetQuestionnaire(ctx, id, tx)
	if err != nil {
		return Questionnaire{}, err
	}
	switch {
	case !q.IsActive():
		return Questionnaire{}, core.NewValidationError(ErrNotActive)
	case q.SID == sid:
		return Questionnaire{}, core.NewValidationError(ErrOwnQuestionnaire)
	case q.FilledBySID(sid):
		return Questionnaire{}, core.NewValidationError(ErrAlreadyFilled)
	}

	q.FilledBy = append(q.FilledBy, sid)
	q.Responses++
	if q.Responses >= q.TargetResponses {
		q.Status = StatusCompleted
	}
	q.UpdatedAt = time.Now().UTC()

	if q, err = svc.repo.UpdateQuestionnaire(ctx, q, tx); err != nil {
		return Questionnaire{}, err
	}
	if _, err = svc.credits.AdjustCredits(ctx, sid, FillReward, tx); err != nil {
		return Questionnaire{}, err
	}
	return q, errors.Wrap(tx.Commit(), "committing tx")
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountQuestionnaires(ctx)
}
