package directors

import (
	"time"

	"github.com/pranubaita/photoshare/src/auth"
	"github.com/pranubaita/photoshare/src/engine"
	"go.uber.org/zap"
)

// ServiceManager groups the application services over one store. It is
// built once at startup and passed to whatever needs it.
type ServiceManager struct {
	UserService *UserService
	PostService *PostService
	logger      *zap.SugaredLogger
}

// NewServiceManager wires the services to store. A nil logger logs nothing.
func NewServiceManager(store engine.Store, factory auth.UserFactory, logger *zap.SugaredLogger) *ServiceManager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if factory == nil {
		factory = auth.NewUserFactory()
	}

	manager := &ServiceManager{
		UserService: NewUserService(store, factory, logger),
		PostService: NewPostService(store, time.Now, logger),
		logger:      logger,
	}

	logger.Debug("ServiceManager initialized")
	return manager
}
