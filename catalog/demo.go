package catalog

import "storefront-service/models"

func price(v int64) *int64 { return &v }

// DemoProducts returns a fresh copy of the demo store's products.
func DemoProducts() []models.Product {
	return []models.Product{
		{
			ID: "1", SKU: "SHOE-001", Name: "프리미엄 러닝화", Category: "신발",
			Price: 159000, OriginalPrice: price(199000), Image: "👟",
			Description: "가벼운 쿠셔닝과 통기성이 뛰어난 프리미엄 러닝화입니다.",
			Rating:      4.8, Reviews: 234,
		},
		{
			ID: "2", SKU: "BAG-002", Name: "가죽 토트백", Category: "가방",
			Price: 289000, Image: "👜",
			Description: "천연 소가죽으로 제작된 클래식한 디자인의 토트백입니다.",
			Rating:      4.5, Reviews: 156,
		},
		{
			ID: "3", SKU: "WATCH-003", Name: "스마트워치 프로", Category: "전자기기",
			Price: 449000, OriginalPrice: price(499000), Image: "⌚",
			Description: "건강 모니터링과 다양한 스마트 기능을 갖춘 최신 스마트워치.",
			Rating:      4.9, Reviews: 892,
		},
		{
			ID: "4", SKU: "SHIRT-004", Name: "린넨 셔츠", Category: "의류",
			Price: 89000, Image: "👔",
			Description: "시원하고 편안한 착용감의 프리미엄 린넨 셔츠입니다.",
			Rating:      4.3, Reviews: 78,
		},
		{
			ID: "5", SKU: "HEADPHONE-005", Name: "노이즈캔슬링 헤드폰", Category: "전자기기",
			Price: 379000, OriginalPrice: price(429000), Image: "🎧",
			Description: "업계 최고 수준의 노이즈캔슬링 기술이 적용된 무선 헤드폰.",
			Rating:      4.7, Reviews: 445,
		},
		{
			ID: "6", SKU: "JACKET-006", Name: "방수 자켓", Category: "의류",
			Price: 249000, Image: "🧥",
			Description: "가볍지만 완벽한 방수 기능을 갖춘 아웃도어 자켓입니다.",
			Rating:      4.6, Reviews: 203,
		},
	}
}
