package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/logging/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrInvalidStrategy   = errors.New("invalid load balancing strategy")
	ErrNoAvailableSlaves = errors.New("no available slave nodes")
)

// MongoManager holds the master client used for writes and the slave
// clients reads are balanced across.
type MongoManager struct {
	master   *mongo.Client
	slaves   []*mongo.Client
	strategy MongoLoadBalancer
	mutex    sync.RWMutex
}

func NewMongoManager(ctx context.Context, conf *config.MongoDB) (*MongoManager, error) {
	if conf == nil || conf.Master == nil {
		return nil, errors.New("master mongodb configuration is required")
	}

	master, err := newMongoClient(ctx, conf.Master)
	if err != nil {
		return nil, err
	}

	var slaves []*mongo.Client
	for i, slaveCfg := range conf.Slaves {
		slave, err := newMongoClient(ctx, slaveCfg)
		if err != nil {
			logger.Warn(ctx, "failed to connect to slave mongodb", "index", i, logger.ErrorKey, err)
			continue
		}
		slaves = append(slaves, slave)
	}

	if len(slaves) == 0 {
		slaves = append(slaves, master)
	}

	var strategy MongoLoadBalancer
	switch conf.Strategy {
	case "round_robin", "":
		strategy = NewMongoRoundRobinBalancer()
	case "random":
		strategy = &MongoRandomBalancer{}
	case "weight":
		strategy = NewMongoWeightBalancer(conf.Slaves)
	default:
		_ = master.Disconnect(ctx)
		return nil, ErrInvalidStrategy
	}

	return &MongoManager{
		master:   master,
		slaves:   slaves,
		strategy: strategy,
	}, nil
}

type MongoLoadBalancer interface {
	Next([]*mongo.Client) (*mongo.Client, error)
}

type MongoRoundRobinBalancer struct {
	current atomic.Uint64
}

func NewMongoRoundRobinBalancer() *MongoRoundRobinBalancer {
	return &MongoRoundRobinBalancer{}
}

func (rb *MongoRoundRobinBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}
	next := rb.current.Add(1) % uint64(len(slaves))
	return slaves[next], nil
}

type MongoRandomBalancer struct{}

func (rb *MongoRandomBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}
	return slaves[rand.Intn(len(slaves))], nil
}

type MongoWeightBalancer struct {
	weights []int
	current atomic.Uint64
}

func NewMongoWeightBalancer(nodes []*config.MongoNode) *MongoWeightBalancer {
	weights := make([]int, len(nodes))
	for i, node := range nodes {
		weights[i] = node.Weight
		if weights[i] <= 0 {
			weights[i] = 1
		}
	}
	return &MongoWeightBalancer{weights: weights}
}

func (wb *MongoWeightBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}

	// Slaves that failed to connect are dropped, so only weigh the ones left.
	weights := wb.weights
	if len(weights) > len(slaves) {
		weights = weights[:len(slaves)]
	}
	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		return slaves[0], nil
	}

	next := wb.current.Add(1) % uint64(totalWeight)
	var accumulator int
	for i, w := range weights {
		accumulator += w
		if uint64(accumulator) > next {
			return slaves[i], nil
		}
	}
	return slaves[0], nil
}

func (m *MongoManager) Master() *mongo.Client {
	if m == nil {
		return nil
	}
	return m.master
}

// Slave returns a read client, falling back to the master.
func (m *MongoManager) Slave() *mongo.Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if len(m.slaves) == 0 {
		return m.master
	}
	slave, err := m.strategy.Next(m.slaves)
	if err != nil {
		return m.master
	}
	return slave
}

func (m *MongoManager) WithTransaction(ctx context.Context, fn func(mongo.SessionContext) error, opts ...*options.TransactionOptions) error {
	session, err := m.master.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sctx mongo.SessionContext) (any, error) {
		return nil, fn(sctx)
	}, opts...)
	return err
}

// SupportsTransactions reports whether the master is a replica set member
// or mongos.
func (m *MongoManager) SupportsTransactions(ctx context.Context) bool {
	var hello bson.M
	if err := m.master.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return false
	}
	if _, ok := hello["setName"]; ok {
		return true
	}
	return hello["msg"] == "isdbgrid"
}

func (m *MongoManager) GetCollection(dbName, collName string, readOnly bool) *mongo.Collection {
	if readOnly {
		return m.Slave().Database(dbName).Collection(collName)
	}
	return m.master.Database(dbName).Collection(collName)
}

func (m *MongoManager) Health(ctx context.Context) error {
	if err := m.master.Ping(ctx, nil); err != nil {
		return fmt.Errorf("master mongodb health check failed: %w", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	var healthySlaves []*mongo.Client
	for _, slave := range m.slaves {
		if err := slave.Ping(ctx, nil); err != nil {
			logger.Warn(ctx, "slave mongodb health check failed", logger.ErrorKey, err)
			continue
		}
		healthySlaves = append(healthySlaves, slave)
	}
	if len(healthySlaves) == 0 {
		healthySlaves = append(healthySlaves, m.master)
	}
	m.slaves = healthySlaves
	return nil
}

func (m *MongoManager) Close(ctx context.Context) error {
	var errs []error

	if err := m.master.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error closing master connection: %w", err))
	}
	for i, slave := range m.slaves {
		if slave != m.master {
			if err := slave.Disconnect(ctx); err != nil {
				errs = append(errs, fmt.Errorf("error closing slave %d connection: %w", i, err))
			}
		}
	}
	return errors.Join(errs...)
}

func newMongoClient(ctx context.Context, conf *config.MongoNode) (*mongo.Client, error) {
	if conf == nil || conf.URI == "" {
		return nil, errors.New("mongodb configuration is nil or empty")
	}

	clientOptions := options.Client().
		ApplyURI(conf.URI).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping error: %w", err)
	}
	return client, nil
}
