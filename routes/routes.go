package routes

import (
	"sharevault/services"

	"go.mongodb.org/mongo-driver/mongo"
)

// B2Config holds the B2 blob store credentials.
type B2Config struct {
	KeyID          string
	ApplicationKey string
	BucketName     string
}

// ServiceContainer holds all services and dependencies.
type ServiceContainer struct {
	DB            *mongo.Database
	JWTSecret     string
	MaxFileSize   int64
	FileStore     *services.MongoFileStore
	BlobGateway   services.BlobGateway
	AccessGate    *services.AccessGate
	OrphanService *services.OrphanService
	FileService   *services.FileService
}

// NewServiceContainer wires the blob gateway, record store, access gate and
// file service together.
func NewServiceContainer(db *mongo.Database, jwtSecret string, maxFileSize int64, b2Config B2Config) (*ServiceContainer, error) {
	b2Service, err := services.NewB2Service(b2Config.KeyID, b2Config.ApplicationKey, b2Config.BucketName)
	if err != nil {
		return nil, err
	}

	fileStore := services.NewMongoFileStore(db)
	accessGate := services.NewAccessGate()
	orphanService := services.NewOrphanService(db, b2Service)
	fileService := services.NewFileService(fileStore, b2Service, accessGate, orphanService)

	return &ServiceContainer{
		DB:            db,
		JWTSecret:     jwtSecret,
		MaxFileSize:   maxFileSize,
		FileStore:     fileStore,
		BlobGateway:   b2Service,
		AccessGate:    accessGate,
		OrphanService: orphanService,
		FileService:   fileService,
	}, nil
}
