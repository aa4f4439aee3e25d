package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	v1 "nutriplan/internal/api/v1"
	"nutriplan/internal/archive"
	"nutriplan/internal/config"
	"nutriplan/internal/importer"
	"nutriplan/internal/narrative"
	refstore "nutriplan/internal/service/store"
	"nutriplan/internal/store"
	"nutriplan/internal/store/pg"
)

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   refstore.ReferenceStore
	v1      *v1.Handler
	closers []func()
}

// NewServer 创建服务器：按配置选择参考数据存储，并挂载归档与点评生成
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{router: gin.Default()}

	coordinator, err := s.initStore(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	coordinator.WithMaxBytes(int64(cfg.Server.MaxUploadMB) << 20)

	// 上传文件归档
	archiveOpts := archive.Options{
		Endpoint:      cfg.Archive.Endpoint,
		Region:        cfg.Archive.Region,
		AccessKey:     cfg.Archive.AccessKey,
		SecretKey:     cfg.Archive.SecretKey,
		Bucket:        cfg.Archive.Bucket,
		PublicBaseURL: cfg.Archive.PublicBaseURL,
		Prefix:        cfg.Archive.Prefix,
	}
	if archiveOpts.Enabled() {
		a, err := archive.NewS3Archive(context.Background(), archiveOpts)
		if err != nil {
			log.Printf("初始化归档失败，上传文件将不归档: %v", err)
		} else {
			coordinator.WithArchive(a)
		}
	}

	s.v1 = v1.NewHandler(s.store, coordinator)
	if sqliteStore, ok := s.store.(*store.Store); ok {
		s.v1.WithStatusSource(sqliteStore)
	}

	// 点评生成
	if cfg.Narrative.APIKey != "" {
		gemini := narrative.NewGeminiClient(cfg.Narrative.APIKey, cfg.Narrative.Model)
		if cfg.Narrative.BaseURL != "" {
			gemini.WithBaseURL(cfg.Narrative.BaseURL)
		}
		s.v1.WithNarrative(gemini, nil)
	} else {
		log.Printf("未配置 GEMINI_API_KEY，/api/ai-feedback 不可用")
	}

	s.setupRoutes(cfg)
	return s, nil
}

// initStore 初始化参考数据存储，返回绑定该存储的导入协调器
func (s *Server) initStore(cfg *config.AppConfig) (*importer.Coordinator, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		s.store = refstore.NewMemoryStore()
		return importer.NewCoordinator(s.store), nil

	case config.DriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres driver requires DATABASE_URL")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pgStore, err := pg.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect postgres: %w", err)
		}
		s.store = pgStore
		s.closers = append(s.closers, pgStore.Close)
		return importer.NewCoordinator(pgStore), nil

	case config.DriverSQLite, "":
		dataDir, err := config.EnsureDataDir(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		sqliteStore, err := store.New(filepath.Join(dataDir, cfg.Store.SQLiteFile))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.store = sqliteStore
		s.closers = append(s.closers, func() { _ = sqliteStore.Close() })
		return importer.NewCoordinator(sqliteStore).WithImportLog(sqliteStore), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(cfg *config.AppConfig) {
	// CORS
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	if len(cfg.Server.AllowedOrigins) == 0 || cfg.Server.DevMode {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	}
	s.router.Use(cors.New(corsCfg))

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// V1 API 路由
	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在"})
	})
}

// Handler 返回 HTTP 处理器（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放存储连接
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() refstore.ReferenceStore {
	return s.store
}
