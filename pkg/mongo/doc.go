// Package mongo provides MongoDB connection management for the MongoDB usage store.
//
// Key features:
//   - Environment-driven configuration (MONGODB_URL, MONGODB_DATABASE, pool limits)
//   - Retry loop that pings the server before handing out the client
//   - Health check closure for readiness endpoints
//   - Sentinel errors compatible with errors.Is()
//
// # Usage
//
//	cfg := mongo.Config{
//		ConnectionURL: "mongodb://localhost:27017",
//		Database:      "quotakit",
//	}
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	store, err := mongostore.New(ctx, db)
//
//	health := mongo.Healthcheck(db.Client())
//
// # See Also
//
// Documentation for the official driver: https://pkg.go.dev/go.mongodb.org/mongo-driver/v2.
package mongo
