package viewmodel

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/network"
	"github.com/fjod/matule/internal/repository"
	"github.com/fjod/matule/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	projectsNamespace = "projects_prefs"
	projectsKey       = "projects"
)

// DefaultProjectCategories is used when the catalogue has no categories.
var DefaultProjectCategories = []string{"Popular", "New", "Men", "Women", "Accessories"}

// CategorySource lists the catalogue categories offered for new projects.
type CategorySource interface {
	Categories(ctx context.Context) ([]string, error)
}

type ProjectsViewModel struct {
	prefs        *storage.Prefs
	repo         repository.ProjectRepository
	users        UserIDSource
	categories   CategorySource
	filesBaseURL string
	log          logrus.FieldLogger
	now          func() time.Time

	Projects *State[[]domain.Project]
	Status   *State[Status]
}

// NewProjectsViewModel wires the projects screen. repo, users and categories
// may be nil; without repo projects live only in the local cache.
func NewProjectsViewModel(store storage.Store, repo repository.ProjectRepository, users UserIDSource, categories CategorySource, filesBaseURL string, log logrus.FieldLogger) *ProjectsViewModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProjectsViewModel{
		prefs:        storage.NewPrefs(store, projectsNamespace),
		repo:         repo,
		users:        users,
		categories:   categories,
		filesBaseURL: filesBaseURL,
		log:          log.WithField("component", "projects"),
		now:          time.Now,
		Projects:     NewState[[]domain.Project](nil),
		Status:       NewState(StatusIdle),
	}
}

// LoadProjects replaces the list with the backend's projects. On failure the
// cached list is shown along with the error.
func (vm *ProjectsViewModel) LoadProjects(ctx context.Context) {
	vm.Status.Set(StatusLoading)

	if vm.repo == nil {
		vm.loadFromCache(ctx)
		vm.Status.Set(StatusSuccess)
		return
	}

	result := vm.repo.GetProjects(ctx)
	if msg, failed := result.ErrorMessage(); failed {
		vm.log.Warnf("Failed to load projects: %s", msg)
		vm.loadFromCache(ctx)
		vm.Status.Set(StatusError(msg))
		return
	}

	remote, _ := result.Data()
	now := vm.now()
	projects := make([]domain.Project, 0, len(remote))
	for _, p := range remote {
		projects = append(projects, ProjectFromAPI(p, vm.filesBaseURL, now))
	}
	sortNewestFirst(projects)
	vm.Projects.Set(projects)
	vm.save(ctx)
	vm.Status.Set(StatusSuccess)
}

func (vm *ProjectsViewModel) loadFromCache(ctx context.Context) {
	var cached []domain.Project
	ok, err := vm.prefs.GetJSON(ctx, projectsKey, &cached)
	if err != nil {
		vm.log.WithError(err).Error("Failed to read cached projects")
		return
	}
	if !ok {
		return
	}
	sortNewestFirst(cached)
	vm.Projects.Set(cached)
}

// AddProject shows the project immediately and then creates it on the
// backend. A project without an id gets a local uuid. On success the local
// id is replaced by the server id; on failure the project stays local.
func (vm *ProjectsViewModel) AddProject(ctx context.Context, project domain.Project, image *network.Image) {
	vm.Status.Set(StatusLoading)

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt == 0 {
		project.CreatedAt = vm.now().UnixMilli()
	}
	vm.Projects.Update(func(projects []domain.Project) []domain.Project {
		return append([]domain.Project{project}, projects...)
	})
	vm.save(ctx)

	var userID string
	if vm.users != nil {
		userID = vm.users.UserID()
	}
	if vm.repo == nil || userID == "" {
		vm.Status.Set(StatusSuccess)
		return
	}

	result := vm.repo.CreateProject(ctx, network.RequestProject{
		Title:             project.Name,
		TypeProject:       project.Type,
		UserID:            userID,
		DateStart:         project.StartDate,
		DateEnd:           project.EndDate,
		Gender:            project.Recipient,
		DescriptionSource: project.DescriptionSource,
		Category:          project.Category,
	}, image)
	if msg, failed := result.ErrorMessage(); failed {
		vm.log.WithField("project", project.Name).Warnf("Project sync failed: %s", msg)
		vm.Status.Set(StatusError(msg))
		return
	}

	created, _ := result.Data()
	vm.Projects.Update(func(projects []domain.Project) []domain.Project {
		out := make([]domain.Project, len(projects))
		copy(out, projects)
		for i := range out {
			if out[i].ID == project.ID {
				out[i].ID = created.ID
				break
			}
		}
		return out
	})
	vm.save(ctx)
	vm.Status.Set(StatusSuccess)
}

func (vm *ProjectsViewModel) RemoveProject(ctx context.Context, projectID string) {
	vm.Projects.Update(func(projects []domain.Project) []domain.Project {
		out := make([]domain.Project, 0, len(projects))
		for _, p := range projects {
			if p.ID != projectID {
				out = append(out, p)
			}
		}
		return out
	})
	vm.save(ctx)
}

func (vm *ProjectsViewModel) ProjectByID(projectID string) (domain.Project, bool) {
	for _, p := range vm.Projects.Value() {
		if p.ID == projectID {
			return p, true
		}
	}
	return domain.Project{}, false
}

// RelativeTime describes how long ago createdAt (unix ms) was.
func (vm *ProjectsViewModel) RelativeTime(createdAt int64) string {
	return RelativeTime(vm.now(), createdAt)
}

func RelativeTime(now time.Time, createdAt int64) string {
	diff := now.Sub(time.UnixMilli(createdAt))
	minutes := int64(diff / time.Minute)
	hours := int64(diff / time.Hour)
	days := hours / 24

	switch {
	case days > 1:
		return fmt.Sprintf("%d days ago", days)
	case days == 1:
		return "Yesterday"
	case hours > 1:
		return fmt.Sprintf("%d hours ago", hours)
	case hours == 1:
		return "1 hour ago"
	case minutes > 1:
		return fmt.Sprintf("%d minutes ago", minutes)
	default:
		return "Just now"
	}
}

// Categories returns the catalogue categories, or the default list when the
// catalogue cannot provide any.
func (vm *ProjectsViewModel) Categories(ctx context.Context) []string {
	if vm.categories != nil {
		categories, err := vm.categories.Categories(ctx)
		if err == nil && len(categories) > 0 {
			return categories
		}
		if err != nil {
			vm.log.WithError(err).Warn("Failed to read categories")
		}
	}
	return append([]string(nil), DefaultProjectCategories...)
}

func (vm *ProjectsViewModel) ResetState() {
	vm.Status.Set(StatusIdle)
}

func (vm *ProjectsViewModel) save(ctx context.Context) {
	if err := vm.prefs.SetJSON(ctx, projectsKey, vm.Projects.Value()); err != nil {
		vm.log.WithError(err).Error("Failed to save projects")
	}
}

func sortNewestFirst(projects []domain.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt > projects[j].CreatedAt
	})
}
