// Package registry maps project identifiers to isolated project stores and
// owns the project lifecycle.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dimop-backend/internal/database"
	"dimop-backend/internal/database/models"
	apperrors "dimop-backend/internal/errors"
	"dimop-backend/internal/logger"
	"dimop-backend/internal/repository"
	"dimop-backend/internal/store"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Registry creates, lists, renames and deletes projects. Each project is
// backed by its own SQLite file under dataDir; the registry itself keeps the
// project table in a separate registry database.
//
// The mutex makes create/delete mutually exclusive with store lookups, so a
// lookup never observes a half-created or half-deleted project.
type Registry struct {
	dataDir   string
	projects  *repository.ProjectRepository
	validator *validator.Validate
	log       *logger.Logger

	mu     sync.RWMutex
	stores map[uint]*store.Store
}

// Options configures registry initialization
type Options struct {
	// DataDir holds registry.db and one project_<id>.db per project
	DataDir string
	// BootstrapProject is the name of the project created on first startup.
	// It is injected configuration, not a package constant.
	BootstrapProject string
}

// New opens the registry database and guarantees the bootstrap project
// exists before any other request is answered.
func New(opts Options, validate *validator.Validate) (*Registry, error) {
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := database.OpenRegistry(filepath.Join(opts.DataDir, "registry.db"), nil)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		dataDir:   opts.DataDir,
		projects:  repository.NewProjectRepository(db),
		validator: validate,
		log:       logger.New(),
		stores:    make(map[uint]*store.Store),
	}
	if err := r.bootstrap(opts.BootstrapProject); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) bootstrap(name string) error {
	count, err := r.projects.Count()
	if err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if count > 0 {
		return nil
	}
	project := &models.Project{Name: name, Bootstrap: true}
	if err := r.projects.Create(project); err != nil {
		return fmt.Errorf("create bootstrap project: %w", err)
	}
	if _, err := r.openStore(project.ID); err != nil {
		return err
	}
	r.log.WithField("project", name).Info("created bootstrap project")
	return nil
}

// CreateProject allocates a new empty isolated store under the given name
func (r *Registry) CreateProject(name string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	project := &models.Project{Name: name}
	if err := r.validateStruct(project); err != nil {
		return nil, err
	}
	taken, err := r.projects.NameExists(name, nil)
	if err != nil {
		return nil, fmt.Errorf("check project name: %w", err)
	}
	if taken {
		return nil, &apperrors.DuplicateNameError{Name: name}
	}
	if err := r.projects.Create(project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if _, err := r.openStore(project.ID); err != nil {
		return nil, err
	}
	r.log.WithProject(project.ID).WithField("name", name).Info("created project")
	return project, nil
}

// ListProjects returns all projects, bootstrap project first, rest in
// creation order
func (r *Registry) ListProjects() ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects, err := r.projects.GetAll()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a project by id
func (r *Registry) GetProject(id uint) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getProject(id)
}

func (r *Registry) getProject(id uint) (*models.Project, error) {
	project, err := r.projects.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("project", id)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// UpdateProject renames a project under the same duplicate-name rule as
// creation
func (r *Registry) UpdateProject(id uint, newName string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, err := r.getProject(id)
	if err != nil {
		return nil, err
	}
	project.Name = newName
	if err := r.validateStruct(project); err != nil {
		return nil, err
	}
	taken, err := r.projects.NameExists(newName, &id)
	if err != nil {
		return nil, fmt.Errorf("check project name: %w", err)
	}
	if taken {
		return nil, &apperrors.DuplicateNameError{Name: newName}
	}
	if err := r.projects.Update(project); err != nil {
		return nil, fmt.Errorf("rename project: %w", err)
	}
	return project, nil
}

// DeleteProject irreversibly discards a project and its storage file. The
// bootstrap project can never be deleted.
func (r *Registry) DeleteProject(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, err := r.getProject(id)
	if err != nil {
		return err
	}
	if project.Bootstrap {
		return apperrors.ErrBootstrapProjectProtected
	}

	if st, ok := r.stores[id]; ok {
		if err := database.Close(st.DB()); err != nil {
			r.log.WithProject(id).WithField("error", err).Warn("closing project store")
		}
		delete(r.stores, id)
	}
	if err := r.projects.Delete(id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := os.Remove(r.storePath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove project store file: %w", err)
	}
	r.log.WithProject(id).WithField("name", project.Name).Info("deleted project")
	return nil
}

// Store resolves a project id to its open store, opening it on first use
func (r *Registry) Store(id uint) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.stores[id]; ok {
		return st, nil
	}
	if _, err := r.getProject(id); err != nil {
		return nil, err
	}
	return r.openStore(id)
}

// Close closes every open project store
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, st := range r.stores {
		if err := database.Close(st.DB()); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.stores, id)
	}
	return firstErr
}

func (r *Registry) openStore(id uint) (*store.Store, error) {
	db, err := database.OpenProject(r.storePath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("open project store %d: %w", id, err)
	}
	st := store.New(id, db, r.validator)
	r.stores[id] = st
	return st, nil
}

func (r *Registry) storePath(id uint) string {
	return filepath.Join(r.dataDir, fmt.Sprintf("project_%d.db", id))
}

func (r *Registry) validateStruct(v interface{}) error {
	err := r.validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return apperrors.NewValidationError(f.Field(), fmt.Sprintf("failed %q constraint", f.Tag()))
	}
	return apperrors.NewValidationError("", err.Error())
}
