package api

import (
	"net/http" // HTTP status codes

	"pollopollo/internal/dto"        // Request and response shapes
	"pollopollo/internal/repository" // Persistence layer

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// CreateProductHandler lists a new product for the authenticated producer
func CreateProductHandler(products *repository.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c) // Get userID from context
		if !ok {
			return
		}
		var req dto.ProductCreateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Producers can only list products for themselves
		if req.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot create products for another user"})
			return
		}
		created, err := products.Create(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to create product", err, logrus.Fields{"user_id": userID})
			return
		}
		if created == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Product not created"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "product_id": created.ProductID}).Info("Product created")
		c.JSON(http.StatusCreated, created)
	}
}

// ListProductsHandler returns a page of available products
func ListProductsHandler(products *repository.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		first, ok := intQuery(c, "first") // Offset
		if !ok {
			return
		}
		last, ok := intQuery(c, "last") // Page size, 0 for all
		if !ok {
			return
		}
		page, err := products.ReadPage(c.Request.Context(), first, last)
		if err != nil {
			internalError(c, "Failed to list products", err, nil)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetProductHandler returns a single product
func GetProductHandler(products *repository.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}
		product, err := products.Find(c.Request.Context(), id)
		if err != nil {
			internalError(c, "Failed to load product", err, logrus.Fields{"product_id": id})
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// ProducerProductsHandler returns every product of a producer
func ProducerProductsHandler(products *repository.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		producerID, ok := uintParam(c, "producerId")
		if !ok {
			return
		}
		list, err := products.ReadByProducer(c.Request.Context(), producerID)
		if err != nil {
			internalError(c, "Failed to list products", err, logrus.Fields{"producer_id": producerID})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ownedProduct loads the product in the path and checks the caller owns it
func ownedProduct(c *gin.Context, products *repository.ProductRepository) (uint, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return 0, false
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return 0, false
	}
	product, err := products.Find(c.Request.Context(), id)
	if err != nil {
		internalError(c, "Failed to load product", err, logrus.Fields{"product_id": id})
		return 0, false
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return 0, false
	}
	if product.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this product"})
		return 0, false
	}
	return id, true
}

// UpdateProductHandler edits a product owned by the caller
func UpdateProductHandler(products *repository.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ownedProduct(c, products)
		if !ok {
			return
		}
		var req dto.ProductUpdateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		req.ID = id // Path wins over body
		updated, err := products.Update(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to update product", err, logrus.Fields{"product_id": id})
			return
		}
		if !updated {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product not updated"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// UpdateProductImageHandler replaces the picture of a product owned by the caller
func UpdateProductImageHandler(products *repository.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ownedProduct(c, products)
		if !ok {
			return
		}
		file, err := c.FormFile("file") // Multipart upload
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
			return
		}
		defer src.Close()

		path, err := products.UpdateImage(c.Request.Context(), id, file.Filename, src)
		writeImageResult(c, path, err, "Product not found")
	}
}
