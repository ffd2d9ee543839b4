// Package redisstore persists resource usage in Redis.
//
// Current usage is a hash per organization, history is a sorted set per
// organization and resource type scored by the sample time, and plans share a
// single hash. RecordUsage wraps both writes in MULTI/EXEC so the tracker uses
// the transactional path. WithHistoryRetention caps each sorted set.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := redisstore.New(client, redisstore.WithHistoryRetention(1000))
package redisstore
