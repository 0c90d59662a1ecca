package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/services"
)

type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// GetProducts handles GET /products?category=&style=&q=&page=&limit=.
func (pc *ProductController) GetProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	filter := models.ProductFilter{
		Category: strings.TrimSpace(ctx.Query("category")),
		Style:    strings.TrimSpace(ctx.Query("style")),
		Query:    strings.TrimSpace(ctx.Query("q")),
	}
	result, svcErr := pc.productService.ListProducts(ctx.Request.Context(), filter, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (pc *ProductController) GetProductByID(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "product")
	if !ok {
		return
	}
	product, svcErr := pc.productService.GetProduct(ctx.Request.Context(), id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	product, svcErr := pc.productService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "product")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	product, svcErr := pc.productService.UpdateProduct(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "product")
	if !ok {
		return
	}
	if svcErr := pc.productService.DeleteProduct(ctx.Request.Context(), id); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UpsertSizes handles PUT /admin/products/:id/sizes.
func (pc *ProductController) UpsertSizes(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "product")
	if !ok {
		return
	}
	var req models.UpsertSizesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	product, svcErr := pc.productService.UpsertSizes(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// GetPresignUpload returns a presigned S3 PUT URL for a product image.
func (pc *ProductController) GetPresignUpload(ctx *gin.Context) {
	contentType := strings.TrimSpace(ctx.Query("content_type"))
	if contentType == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "content_type query parameter is required"})
		return
	}
	resp, svcErr := pc.productService.PresignImageUpload(ctx.Request.Context(), ctx.Query("filename"), contentType)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
