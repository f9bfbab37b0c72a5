package memory

import (
	"context"

	"github.com/abhijitramesh/echovault/pkg/model"
)

// Tasks collects every action item across memories, newest memory first
func (u *UseCase) Tasks(ctx context.Context) ([]*model.Task, error) {
	memories, err := u.repo.ListMemories(ctx)
	if err != nil {
		return nil, err
	}

	var tasks []*model.Task
	for _, m := range memories {
		for _, task := range m.Tasks {
			tasks = append(tasks, &model.Task{
				Task:      task,
				MemoryID:  m.ID,
				Source:    m.Source,
				CreatedAt: m.CreatedAt,
			})
		}
	}

	return tasks, nil
}
