package semantic

// loadDefaults seeds the layer with the e-commerce demo schema mappings.
func (l *Layer) loadDefaults() {
	l.termMappings = []TermMapping{
		// Revenue / sales
		{Term: "doanh thu", SQLColumn: "total_amount", Table: "orders", Description: "Total revenue", Synonyms: []string{"revenue", "sales", "doanh số"}},
		{Term: "tổng tiền", SQLColumn: "total_amount", Table: "orders", Description: "Order total"},
		{Term: "giá", SQLColumn: "price", Table: "products", Description: "Product price", Synonyms: []string{"price", "giá bán"}},

		// Customers
		{Term: "khách hàng", SQLColumn: "name", Table: "customers", Description: "Customer name", Synonyms: []string{"customer", "kh"}},
		{Term: "email khách", SQLColumn: "email", Table: "customers", Description: "Customer email"},
		{Term: "thành phố", SQLColumn: "city", Table: "customers", Description: "Customer city", Synonyms: []string{"city", "tp"}},

		// Products
		{Term: "sản phẩm", SQLColumn: "name", Table: "products", Description: "Product name", Synonyms: []string{"product", "sp"}},
		{Term: "tồn kho", SQLColumn: "stock", Table: "products", Description: "Available stock", Synonyms: []string{"stock", "inventory"}},
		{Term: "danh mục", SQLColumn: "name", Table: "categories", Description: "Category name", Synonyms: []string{"category"}},

		// Orders
		{Term: "đơn hàng", SQLColumn: "id", Table: "orders", Description: "Order ID", Synonyms: []string{"order", "dh"}},
		{Term: "trạng thái", SQLColumn: "status", Table: "orders", Description: "Order status", Synonyms: []string{"status"}},
		{Term: "ngày đặt", SQLColumn: "order_date", Table: "orders", Description: "Order date", Synonyms: []string{"order date"}},
		{Term: "số lượng", SQLColumn: "quantity", Table: "order_items", Description: "Item quantity", Synonyms: []string{"quantity", "sl"}},
	}

	l.valueMappings = []ValueMapping{
		// Cities
		{Alias: "hn", ActualValue: "Hanoi", Column: "city", Table: "customers"},
		{Alias: "hcm", ActualValue: "Ho Chi Minh", Column: "city", Table: "customers"},
		{Alias: "dn", ActualValue: "Da Nang", Column: "city", Table: "customers"},
		{Alias: "saigon", ActualValue: "Ho Chi Minh", Column: "city", Table: "customers"},

		// Order statuses
		{Alias: "chờ xử lý", ActualValue: "pending", Column: "status", Table: "orders"},
		{Alias: "đã xác nhận", ActualValue: "confirmed", Column: "status", Table: "orders"},
		{Alias: "đang giao", ActualValue: "shipped", Column: "status", Table: "orders"},
		{Alias: "đã giao", ActualValue: "delivered", Column: "status", Table: "orders"},
		{Alias: "đã hủy", ActualValue: "cancelled", Column: "status", Table: "orders"},
	}

	l.tableRules = map[string]TableRule{
		"customers": {
			Table:         "customers",
			Description:   "Customer information table",
			CommonColumns: []string{"id", "name", "email", "city"},
			JoinHints: []JoinHint{
				{Target: "orders", On: "customers.id = orders.customer_id"},
			},
			ExampleQueries: []ExampleQuery{
				{Question: "All customers from Hanoi", SQL: "SELECT * FROM customers WHERE city = 'Hanoi'"},
				{Question: "Customer count by city", SQL: "SELECT city, COUNT(*) as count FROM customers GROUP BY city ORDER BY count DESC"},
			},
			Notes: []string{"City values: Hanoi, Ho Chi Minh, Da Nang, Can Tho, Hai Phong"},
		},
		"products": {
			Table:         "products",
			Description:   "Product catalog table",
			CommonColumns: []string{"id", "name", "price", "category_id", "stock"},
			JoinHints: []JoinHint{
				{Target: "categories", On: "products.category_id = categories.id"},
				{Target: "order_items", On: "products.id = order_items.product_id"},
			},
			ExampleQueries: []ExampleQuery{
				{Question: "Products under $50", SQL: "SELECT * FROM products WHERE price < 50"},
				{Question: "Products by category", SQL: "SELECT c.name as category, COUNT(p.id) as count FROM categories c LEFT JOIN products p ON c.id = p.category_id GROUP BY c.id"},
			},
			Notes: []string{"Price is in USD", "Use stock > 0 for available products only"},
		},
		"orders": {
			Table:         "orders",
			Description:   "Customer orders table",
			CommonColumns: []string{"id", "customer_id", "order_date", "status", "total_amount"},
			JoinHints: []JoinHint{
				{Target: "customers", On: "orders.customer_id = customers.id"},
				{Target: "order_items", On: "orders.id = order_items.order_id"},
			},
			ExampleQueries: []ExampleQuery{
				{Question: "Total revenue", SQL: "SELECT SUM(total_amount) as total_revenue FROM orders"},
				{Question: "Revenue by month", SQL: "SELECT strftime('%Y-%m', order_date) as month, SUM(total_amount) as revenue FROM orders GROUP BY month ORDER BY month"},
				{Question: "Orders by status", SQL: "SELECT status, COUNT(*) as count FROM orders GROUP BY status"},
			},
			Notes: []string{
				"Status values: pending, confirmed, shipped, delivered, cancelled",
				"total_amount is in USD",
			},
		},
		"order_items": {
			Table:         "order_items",
			Description:   "Line items per order",
			CommonColumns: []string{"id", "order_id", "product_id", "quantity", "unit_price"},
			JoinHints: []JoinHint{
				{Target: "orders", On: "order_items.order_id = orders.id"},
				{Target: "products", On: "order_items.product_id = products.id"},
			},
			ExampleQueries: []ExampleQuery{
				{Question: "Best selling products", SQL: "SELECT p.name, SUM(oi.quantity) as sold FROM order_items oi JOIN products p ON oi.product_id = p.id GROUP BY p.id ORDER BY sold DESC"},
			},
		},
		"categories": {
			Table:         "categories",
			Description:   "Product categories",
			CommonColumns: []string{"id", "name"},
			JoinHints: []JoinHint{
				{Target: "products", On: "categories.id = products.category_id"},
			},
		},
	}
}
