package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

type Config struct {
	Minio   *MinIOCfg
	Http    *HTTPConfig
	Db      *PGDBCfg
	Qdrant  *QdrantCfg
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	Encoder *EncoderCfg
	Sampler *SamplerCfg
	Indexer *IndexerCfg
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки MinIO
	BucketName        string // Бакет с видео и превью
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	PresignTTL        time.Duration // Срок жизни presigned-ссылок на стриминг и превью
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port           int
	Host           string
	ApiKey         string
	CollectionName string // коллекция с эмбеддингами кадров
	UseTLS         bool
	VectorSize     uint64 // должен совпадать с размерностью модели энкодера
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	VideoTTL    time.Duration // TTL закэшированной информации о видео
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// EncoderCfg описывает подключение к CLIP-сервису инференса.
type EncoderCfg struct {
	Endpoint      string
	Timeout       time.Duration
	MaxConcurrent int // одновременные батчи на энкодер
	MaxRetries    int
	BatchSize     int // кадров в одном запросе encode_images
}

// SamplerCfg описывает извлечение кадров из видео.
type SamplerCfg struct {
	FFmpegPath  string
	FFprobePath string
	TargetFPS   float64 // целевая частота сэмплирования, кадров/сек
}

// IndexerCfg описывает фоновый запуск индексации.
type IndexerCfg struct {
	MaxConcurrent int    // одновременных задач индексации на процесс
	TempDir       string // куда скачивается видео перед извлечением кадров
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Переменные из .env (если файл есть) подхватываются до чтения окружения.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env: %v", err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	encoder, err := loadEncoderCfg(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	sampler, err := loadSamplerCfg(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	indexer, err := loadIndexerCfg(log)
	if err != nil {
		return nil, e.Wrap("cfg.Load", err)
	}

	return &Config{
		Minio:   minio,
		Http:    http,
		Db:      db,
		Qdrant:  qdrant,
		Redis:   redis,
		Kafka:   kafka,
		Encoder: encoder,
		Sampler: sampler,
		Indexer: indexer,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL     = false
		defaultEndpoint   = "minio:9000"
		defaultBucket     = "videosearch"
		defaultPresignTTL = time.Hour
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	presignTTL, err := parseDurationEnv("MINIO_PRESIGN_TTL", defaultPresignTTL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_PRESIGN_TTL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("MINIO_BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PresignTTL:        presignTTL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "512" // ViT-B/32
		defaultCollection     = "video_frames"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	strVectorSize := getEnvOrDefault("VECTOR_SIZE", defaultVectorSize)
	vectorSize, err := strconv.ParseUint(strVectorSize, 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:           getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:           port,
		ApiKey:         getEnv("QDRANT__SERVICE__API_KEY"),
		CollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:         useTLS,
		VectorSize:     vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultVideoTTL     = 3 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	videoTTL, err := parseDurationEnv("VIDEO_TTL", defaultVideoTTL)
	if err != nil {
		log.Errorf(err, "invalid VIDEO_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		VideoTTL:    videoTTL,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "video-lifecycle"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           splitAndTrim(brokerStr),
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadEncoderCfg(log logger.Logger) (*EncoderCfg, error) {
	const (
		defaultEndpoint      = "http://clip-service:8000"
		defaultTimeout       = 60 * time.Second
		defaultMaxConcurrent = 4
		defaultMaxRetries    = 3
		defaultBatchSize     = 32
	)

	timeout, err := parseDurationEnv("ENCODER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid ENCODER_TIMEOUT")
		return nil, err
	}

	maxConcurrent, err := parseIntEnv("ENCODER_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		log.Errorf(err, "invalid ENCODER_MAX_CONCURRENT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("ENCODER_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid ENCODER_MAX_RETRIES")
		return nil, err
	}

	batchSize, err := parseIntEnv("ENCODER_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		log.Errorf(err, "invalid ENCODER_BATCH_SIZE")
		return nil, err
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("ENCODER_BATCH_SIZE must be positive")
	}

	return &EncoderCfg{
		Endpoint:      getEnvOrDefault("ENCODER_ENDPOINT", defaultEndpoint),
		Timeout:       timeout,
		MaxConcurrent: maxConcurrent,
		MaxRetries:    maxRetries,
		BatchSize:     batchSize,
	}, nil
}

func loadSamplerCfg(log logger.Logger) (*SamplerCfg, error) {
	const (
		defaultFFmpeg    = "ffmpeg"
		defaultFFprobe   = "ffprobe"
		defaultTargetFPS = "1.0"
	)

	fpsStr := getEnvOrDefault("SAMPLER_TARGET_FPS", defaultTargetFPS)
	fps, err := strconv.ParseFloat(fpsStr, 64)
	if err != nil || fps <= 0 {
		if err == nil {
			err = fmt.Errorf("SAMPLER_TARGET_FPS must be positive, got %s", fpsStr)
		}
		log.Errorf(err, "invalid SAMPLER_TARGET_FPS")
		return nil, err
	}

	return &SamplerCfg{
		FFmpegPath:  getEnvOrDefault("FFMPEG_PATH", defaultFFmpeg),
		FFprobePath: getEnvOrDefault("FFPROBE_PATH", defaultFFprobe),
		TargetFPS:   fps,
	}, nil
}

func loadIndexerCfg(log logger.Logger) (*IndexerCfg, error) {
	const defaultMaxConcurrent = 2

	maxConcurrent, err := parseIntEnv("INDEXER_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		log.Errorf(err, "invalid INDEXER_MAX_CONCURRENT")
		return nil, err
	}

	return &IndexerCfg{
		MaxConcurrent: maxConcurrent,
		TempDir:       getEnvOrDefault("INDEXER_TEMP_DIR", os.TempDir()),
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	return strconv.Atoi(v)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
