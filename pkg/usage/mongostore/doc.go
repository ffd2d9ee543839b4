// Package mongostore persists resource usage in MongoDB.
//
// Current usage, history samples and plans live in three collections of one
// database. Call EnsureIndexes once at startup.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := mongostore.New(db)
//	if err := store.EnsureIndexes(ctx); err != nil {
//		return err
//	}
package mongostore
