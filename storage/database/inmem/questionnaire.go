package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/questionnaire"
)

type questionnaireRepository struct {
	db *DB
}

var _ questionnaire.Repository = (*questionnaireRepository)(nil) // interface compliance check

func NewQuestionnaireRepository(db *DB) *questionnaireRepository {
	return &questionnaireRepository{db: db}
}

func (repo *questionnaireRepository) CreateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	repo.db.questionnaires[q.ID] = &q
	return q, nil
}

func (repo *questionnaireRepository) query(keep func(*questionnaire.Questionnaire) bool) []questionnaire.Questionnaire {
	var qs []questionnaire.Questionnaire
	for _, q := range repo.db.questionnaires {
		if keep(q) {
			qs = append(qs, *q)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].CreatedAt.After(qs[j].CreatedAt) })
	return qs
}

func (repo *questionnaireRepository) QueryActiveQuestionnaires(ctx context.Context, exec ...core.DBExecutor) ([]questionnaire.Questionnaire, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(q *questionnaire.Questionnaire) bool { return q.IsActive() }), nil
}

func (repo *questionnaireRepository) QueryQuestionnairesBySID(ctx context.Context, sid string, exec ...core.DBExecutor) ([]questionnaire.Questionnaire, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(q *questionnaire.Questionnaire) bool { return q.SID == sid }), nil
}

func (repo *questionnaireRepository) GetQuestionnaire(ctx context.Context, id string, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.questionnaires[id]; ok {
		return *q, nil
	}
	return questionnaire.Questionnaire{}, questionnaire.ErrNotFound
}

func (repo *questionnaireRepository) GetActiveBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, q := range repo.db.questionnaires {
		if q.SID == sid && q.IsActive() {
			return *q, nil
		}
	}
	return questionnaire.Questionnaire{}, questionnaire.ErrNotFound
}

func (repo *questionnaireRepository) UpdateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questionnaires[q.ID]; !ok {
		return questionnaire.Questionnaire{}, questionnaire.ErrNotFound
	}
	repo.db.questionnaires[q.ID] = &q
	return q, nil
}

func (repo *questionnaireRepository) CountQuestionnaires(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.questionnaires), nil
}
