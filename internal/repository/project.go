package repository

import (
	"context"

	"github.com/fjod/matule/internal/network"
)

type HTTPProjectRepository struct {
	api *network.Client
}

func NewHTTPProjectRepository(api *network.Client) *HTTPProjectRepository {
	return &HTTPProjectRepository{api: api}
}

func (r *HTTPProjectRepository) GetProjects(ctx context.Context) network.Result[[]network.ProjectAPI] {
	page, err := r.api.GetProjects(ctx)
	if err != nil {
		return network.FailureFrom[[]network.ProjectAPI](err)
	}
	return network.Success(page.Items)
}

func (r *HTTPProjectRepository) CreateProject(ctx context.Context, req network.RequestProject, image *network.Image) network.Result[network.ProjectAPI] {
	project, err := r.api.CreateProject(ctx, req, image)
	if err != nil {
		return network.FailureFrom[network.ProjectAPI](err)
	}
	return network.Success(*project)
}
