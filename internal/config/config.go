package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Store     StoreConfig     `toml:"store"`
	Narrative NarrativeConfig `toml:"narrative"`
	Archive   ArchiveConfig   `toml:"archive"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int      `toml:"port"`
	DevMode        bool     `toml:"dev_mode"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxUploadMB    int      `toml:"max_upload_mb"` // 上传文件大小上限（MB）
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// StoreConfig 参考数据存储配置
type StoreConfig struct {
	Driver      string `toml:"driver"`       // memory/sqlite/postgres
	SQLiteFile  string `toml:"sqlite_file"`  // 相对数据目录
	DatabaseURL string `toml:"database_url"` // postgres 连接串
}

// NarrativeConfig 点评生成配置
type NarrativeConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// ArchiveConfig 上传文件归档配置（S3 兼容）
type ArchiveConfig struct {
	Endpoint      string `toml:"endpoint"`
	Region        string `toml:"region"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	Bucket        string `toml:"bucket"`
	PublicBaseURL string `toml:"public_base_url"`
	Prefix        string `toml:"prefix"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	ConfigPath    string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           20262,
			DevMode:        false,
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:    20,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLiteFile: "nutriplan.db",
		},
		Archive: ArchiveConfig{
			Region: "auto",
			Prefix: "uploads",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 与 .env 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadConfigFrom(exeDir)
}

// LoadConfigFrom 从指定目录加载配置
// 优先级：环境变量 > config.toml > 默认值；.env 中的变量不会覆盖已有环境变量
func LoadConfigFrom(dir string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{ConfigPath: filepath.Join(dir, "config.toml")}
	config := DefaultConfig()

	loadDotEnv(dir)

	data, err := os.ReadFile(info.ConfigPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if applyEnv(config) {
		info.PortSpecified = true
	}

	return config, info, nil
}

// loadDotEnv 加载 .env；文件不存在时忽略
func loadDotEnv(dir string) {
	candidates := []string{filepath.Join(dir, ".env"), ".env"}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// applyEnv 环境变量覆盖，返回端口是否被指定
func applyEnv(config *AppConfig) bool {
	portSet := false
	if v := os.Getenv("NUTRIPLAN_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			config.Server.Port = p
			portSet = true
		}
	}
	if v := os.Getenv("NUTRIPLAN_ALLOWED_ORIGINS"); v != "" {
		config.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("NUTRIPLAN_STORE_DRIVER"); v != "" {
		config.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Store.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Narrative.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		config.Narrative.Model = v
	}

	overrides := map[string]*string{
		"ARCHIVE_ENDPOINT":        &config.Archive.Endpoint,
		"ARCHIVE_REGION":          &config.Archive.Region,
		"ARCHIVE_ACCESS_KEY":      &config.Archive.AccessKey,
		"ARCHIVE_SECRET_KEY":      &config.Archive.SecretKey,
		"ARCHIVE_BUCKET":          &config.Archive.Bucket,
		"ARCHIVE_PUBLIC_BASE_URL": &config.Archive.PublicBaseURL,
	}
	for key, target := range overrides {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}

	return portSet
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ResolveDataDir 数据目录；相对路径基于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, filename string) string {
	return filepath.Join(ResolveDataDir(config), filename)
}
