// Package storage archives delivered documents to S3-compatible object
// storage.
//
// # Basic Usage
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "kindle-archive",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	// Upload a delivered file under deliveries/<yyyy>/<mm>/<name>.
//	err = store.Archive(ctx, "/srv/uploads/20240102_150405_report.pdf")
//
// # S3-Compatible Services
//
// Set Endpoint and PathStyle for MinIO and similar services:
//
//	cfg := storage.Config{
//		Bucket:    "archive",
//		AccessKey: "minioadmin",
//		SecretKey: "minioadmin",
//		Endpoint:  "http://localhost:9000",
//		PathStyle: true,
//	}
//
// # Error Handling
//
// S3 errors are normalized to sentinel errors:
//
//	if errors.Is(err, storage.ErrAccessDenied) {
//		// check bucket policy
//	}
package storage
