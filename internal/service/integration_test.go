//go:build integration
// +build integration

package service_test

import (
	"context"
	"testing"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	productSvc  service.ProductService
	orderSvc    service.OrderService
	tagRepo     repository.TagRepository
	counterRepo repository.CounterRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

// setupEnv starts a throwaway PostgreSQL container, migrates the schema and
// wires the services against it.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Product{}, &model.ProductTag{}, &model.ProductTagRelation{}, &model.ProductImage{},
		&model.Order{}, &model.OrderItem{},
		&model.StoreCounter{}, &model.TagProductCount{},
	))

	hub := ws.NewHub()
	go hub.Run()

	productRepo := repository.NewProductRepo(db)
	tagRepo := repository.NewTagRepo(db)
	imageRepo := repository.NewImageRepo(db)
	counterRepo := repository.NewCounterRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	return &testEnv{
		db:          db,
		productSvc:  service.NewProductService(productRepo, tagRepo, imageRepo, counterRepo, db, hub),
		orderSvc:    service.NewOrderService(orderRepo, productRepo, db, hub),
		tagRepo:     tagRepo,
		counterRepo: counterRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

func (e *testEnv) mustCreateProduct(t *testing.T, name string, price, stock int64, tagIDs ...int64) *model.Product {
	t.Helper()
	p, err := e.productSvc.CreateProduct(&service.CreateProductInput{
		Name: name, Price: price, Stock: stock, TagIDs: tagIDs,
	}, "test-user", "Tester")
	require.NoError(t, err)
	return p
}

func (e *testEnv) mustCreateTag(t *testing.T, name string) *model.ProductTag {
	t.Helper()
	tag, err := e.productSvc.CreateTag(&service.CreateTagInput{Name: name}, "test-user")
	require.NoError(t, err)
	return tag
}

func strPtr(s string) *string { return &s }

func TestOrderPlacement(t *testing.T) {
	env := setupEnv(t)

	t.Run("decrements stock and snapshots prices", func(t *testing.T) {
		coffee := env.mustCreateProduct(t, "Coffee", 500, 10)

		order, err := env.orderSvc.RegisterOrder(&service.RegisterOrderInput{
			CustomerName: strPtr("Tanaka"),
			Items:        []service.OrderItemInput{{ProductID: coffee.ID, Quantity: 3}},
		}, "test-user", "Tester")
		require.NoError(t, err)

		assert.Equal(t, model.OrderPending, order.Status)
		assert.Equal(t, int64(1500), order.TotalAmount)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Coffee", order.Items[0].ProductName)
		assert.Equal(t, int64(500), order.Items[0].UnitAmount)

		reloaded, err := env.productRepo.FindByID(coffee.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), reloaded.Stock)
	})

	t.Run("insufficient stock rolls everything back", func(t *testing.T) {
		cake := env.mustCreateProduct(t, "Cake", 800, 2)
		tea := env.mustCreateProduct(t, "Tea", 300, 100)

		_, err := env.orderSvc.RegisterOrder(&service.RegisterOrderInput{
			Items: []service.OrderItemInput{
				{ProductID: tea.ID, Quantity: 5},
				{ProductID: cake.ID, Quantity: 3},
			},
		}, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrInsufficientStock)

		// The first line's decrement must not survive the rollback.
		reloadedTea, err := env.productRepo.FindByID(tea.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), reloadedTea.Stock)

		reloadedCake, err := env.productRepo.FindByID(cake.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), reloadedCake.Stock)
	})

	t.Run("unknown product rejects the whole order", func(t *testing.T) {
		soda := env.mustCreateProduct(t, "Soda", 200, 10)

		_, err := env.orderSvc.RegisterOrder(&service.RegisterOrderInput{
			Items: []service.OrderItemInput{
				{ProductID: soda.ID, Quantity: 1},
				{ProductID: 999999, Quantity: 1},
			},
		}, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrOrderUnknownProduct)

		reloaded, err := env.productRepo.FindByID(soda.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), reloaded.Stock)
	})

	t.Run("duplicate lines decrement cumulatively", func(t *testing.T) {
		juice := env.mustCreateProduct(t, "Juice", 400, 5)

		// 3 + 3 exceeds the stock of 5 even though each line alone fits.
		_, err := env.orderSvc.RegisterOrder(&service.RegisterOrderInput{
			Items: []service.OrderItemInput{
				{ProductID: juice.ID, Quantity: 3},
				{ProductID: juice.ID, Quantity: 3},
			},
		}, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrInsufficientStock)

		order, err := env.orderSvc.RegisterOrder(&service.RegisterOrderInput{
			Items: []service.OrderItemInput{
				{ProductID: juice.ID, Quantity: 2},
				{ProductID: juice.ID, Quantity: 2},
			},
		}, "test-user", "Tester")
		require.NoError(t, err)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, int64(1600), order.TotalAmount)

		reloaded, err := env.productRepo.FindByID(juice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), reloaded.Stock)
	})
}

func TestOrderLifecycle(t *testing.T) {
	env := setupEnv(t)
	coffee := env.mustCreateProduct(t, "Coffee", 500, 100)

	order, err := env.orderSvc.RegisterOrder(&service.RegisterOrderInput{
		CustomerName: strPtr("Suzuki"),
		Comment:      strPtr("to go"),
		Items:        []service.OrderItemInput{{ProductID: coffee.ID, Quantity: 1}},
	}, "test-user", "Tester")
	require.NoError(t, err)

	t.Run("status moves freely between values", func(t *testing.T) {
		for _, status := range []string{"processing", "completed", "pending", "cancelled"} {
			updated, err := env.orderSvc.UpdateOrder(order.ID, &service.UpdateOrderInput{
				Status: &status,
			}, "test-user", "Tester")
			require.NoError(t, err)
			assert.Equal(t, model.OrderStatus(status), updated.Status)
		}

		bogus := "shipped"
		_, err := env.orderSvc.UpdateOrder(order.ID, &service.UpdateOrderInput{Status: &bogus}, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrInvalidOrderStatus)
	})

	t.Run("empty string clears nullable fields", func(t *testing.T) {
		updated, err := env.orderSvc.UpdateOrder(order.ID, &service.UpdateOrderInput{
			CustomerName: strPtr(""),
		}, "test-user", "Tester")
		require.NoError(t, err)
		assert.Nil(t, updated.CustomerName)
		require.NotNil(t, updated.Comment)
		assert.Equal(t, "to go", *updated.Comment)
	})

	t.Run("concurrent edits serialize on the order row", func(t *testing.T) {
		statuses := []string{"processing", "completed", "cancelled", "pending"}
		errc := make(chan error, len(statuses))
		for _, status := range statuses {
			go func(status string) {
				_, err := env.orderSvc.UpdateOrder(order.ID, &service.UpdateOrderInput{
					Status: &status,
				}, "test-user", "Tester")
				errc <- err
			}(status)
		}
		for range statuses {
			require.NoError(t, <-errc)
		}

		reloaded, err := env.orderSvc.GetOrderByID(order.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.Status.Valid())
	})

	t.Run("deleting a missing order is an error", func(t *testing.T) {
		err := env.orderSvc.DeleteOrder(424242, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})

	t.Run("delete removes the order and its items", func(t *testing.T) {
		require.NoError(t, env.orderSvc.DeleteOrder(order.ID, "test-user", "Tester"))
		_, err := env.orderSvc.GetOrderByID(order.ID)
		assert.ErrorIs(t, err, service.ErrOrderNotFound)

		var itemCount int64
		require.NoError(t, env.db.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
		assert.Zero(t, itemCount)
	})
}

func TestProductLifecycle(t *testing.T) {
	env := setupEnv(t)

	t.Run("name must be unique except against itself", func(t *testing.T) {
		p := env.mustCreateProduct(t, "Espresso", 400, 10)
		_, err := env.productSvc.CreateProduct(&service.CreateProductInput{
			Name: "Espresso", Price: 100, Stock: 1,
		}, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrProductNameTaken)

		// Renaming to its own current name is fine.
		_, err = env.productSvc.UpdateProduct(p.ID, &service.UpdateProductInput{
			Name: "Espresso", Price: 450, Stock: 10,
		}, "test-user", "Tester")
		assert.NoError(t, err)
	})

	t.Run("delete is idempotent and frees the name", func(t *testing.T) {
		p := env.mustCreateProduct(t, "Latte", 550, 5)
		require.NoError(t, env.productSvc.DeleteProduct(p.ID, "test-user", "Tester"))
		require.NoError(t, env.productSvc.DeleteProduct(p.ID, "test-user", "Tester"))

		_, err := env.productSvc.GetProductByID(p.ID)
		assert.ErrorIs(t, err, service.ErrProductNotFound)

		// The name is reusable once the row is gone.
		env.mustCreateProduct(t, "Latte", 600, 3)
	})

	t.Run("order snapshots survive product deletion", func(t *testing.T) {
		p := env.mustCreateProduct(t, "Seasonal Blend", 700, 10)
		order, err := env.orderSvc.RegisterOrder(&service.RegisterOrderInput{
			Items: []service.OrderItemInput{{ProductID: p.ID, Quantity: 2}},
		}, "test-user", "Tester")
		require.NoError(t, err)

		require.NoError(t, env.productSvc.DeleteProduct(p.ID, "test-user", "Tester"))

		reloaded, err := env.orderSvc.GetOrderByID(order.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 1)
		assert.Nil(t, reloaded.Items[0].ProductID)
		assert.Equal(t, "Seasonal Blend", reloaded.Items[0].ProductName)
		assert.Equal(t, int64(700), reloaded.Items[0].UnitAmount)
	})
}

func TestTagGarbageCollection(t *testing.T) {
	env := setupEnv(t)

	tag := env.mustCreateTag(t, "seasonal")
	p1 := env.mustCreateProduct(t, "Pumpkin Latte", 600, 10, tag.ID)
	p2 := env.mustCreateProduct(t, "Chestnut Cake", 500, 10, tag.ID)

	count, err := env.counterRepo.GetTagCount(env.db, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Removing the tag from one product keeps the tag alive.
	_, err = env.productSvc.UpdateProduct(p1.ID, &service.UpdateProductInput{
		Name: "Pumpkin Latte", Price: 600, Stock: 10, TagIDs: []int64{},
	}, "test-user", "Tester")
	require.NoError(t, err)

	_, err = env.tagRepo.FindByID(tag.ID)
	require.NoError(t, err)
	count, err = env.counterRepo.GetTagCount(env.db, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Deleting the last holder garbage-collects the tag and its counter row.
	require.NoError(t, env.productSvc.DeleteProduct(p2.ID, "test-user", "Tester"))

	_, err = env.tagRepo.FindByID(tag.ID)
	assert.Error(t, err)

	tagCount, err := env.counterRepo.GetStore(model.CounterProductTags)
	require.NoError(t, err)
	assert.Zero(t, tagCount)
}

func TestStoreCounters(t *testing.T) {
	env := setupEnv(t)

	count, err := env.counterRepo.GetStore(model.CounterProducts)
	require.NoError(t, err)
	assert.Zero(t, count)

	a := env.mustCreateProduct(t, "A", 100, 1)
	env.mustCreateProduct(t, "B", 100, 1)

	count, err = env.counterRepo.GetStore(model.CounterProducts)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, env.productSvc.DeleteProduct(a.ID, "test-user", "Tester"))
	count, err = env.counterRepo.GetStore(model.CounterProducts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("attaching an unknown tag fails the whole mutation", func(t *testing.T) {
		_, err := env.productSvc.CreateProduct(&service.CreateProductInput{
			Name: "Ghost", Price: 100, Stock: 1, TagIDs: []int64{987654},
		}, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrTagNotFound)

		// The aborted create must not bump the counter.
		count, err := env.counterRepo.GetStore(model.CounterProducts)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("tag list carries product counts", func(t *testing.T) {
		tag := env.mustCreateTag(t, "drinks")
		env.mustCreateProduct(t, "Cola", 150, 20, tag.ID)

		tags, err := env.productSvc.GetAllTags()
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "drinks", tags[0].Name)
		assert.Equal(t, int64(1), tags[0].ProductCount)
	})
}

func TestProductImages(t *testing.T) {
	env := setupEnv(t)
	p := env.mustCreateProduct(t, "Muffin", 250, 8)

	img := &service.ImageInput{Data: "aGVsbG8=", MimeType: "image/png"}

	t.Run("populated payload stores the image", func(t *testing.T) {
		_, err := env.productSvc.UpdateProduct(p.ID, &service.UpdateProductInput{
			Name: "Muffin", Price: 250, Stock: 8, Image: img,
		}, "test-user", "Tester")
		require.NoError(t, err)

		stored, err := env.productSvc.GetProductImage(p.ID)
		require.NoError(t, err)
		assert.Equal(t, "aGVsbG8=", stored.Data)
		assert.Equal(t, "image/png", stored.MimeType)
	})

	t.Run("nil image leaves the stored one alone", func(t *testing.T) {
		_, err := env.productSvc.UpdateProduct(p.ID, &service.UpdateProductInput{
			Name: "Muffin", Price: 300, Stock: 8,
		}, "test-user", "Tester")
		require.NoError(t, err)

		stored, err := env.productSvc.GetProductImage(p.ID)
		require.NoError(t, err)
		assert.Equal(t, "aGVsbG8=", stored.Data)
	})

	t.Run("rejected payload rolls back the rest of the update", func(t *testing.T) {
		_, err := env.productSvc.UpdateProduct(p.ID, &service.UpdateProductInput{
			Name: "Muffin", Price: 999, Stock: 8,
			Image: &service.ImageInput{Data: "aGVsbG8=", MimeType: "image/tiff"},
		}, "test-user", "Tester")
		assert.ErrorIs(t, err, service.ErrImageMimeType)

		reloaded, err := env.productSvc.GetProductByID(p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(300), reloaded.Price)
	})

	t.Run("empty data deletes the image", func(t *testing.T) {
		_, err := env.productSvc.UpdateProduct(p.ID, &service.UpdateProductInput{
			Name: "Muffin", Price: 300, Stock: 8,
			Image: &service.ImageInput{Data: ""},
		}, "test-user", "Tester")
		require.NoError(t, err)

		_, err = env.productSvc.GetProductImage(p.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
