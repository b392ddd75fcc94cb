package fixer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sqlfixtables/internal/creation"
	"sqlfixtables/internal/dialect"
	"sqlfixtables/internal/models"
	"sqlfixtables/internal/schema"
)

const shopModels = `
apps:
  - label: auth
    models:
      - name: User
        fields:
          - {name: username, type: CharField, max_length: 30, unique: true}
  - label: shop
    models:
      - name: Order
        fields:
          - {name: total, type: DecimalField, max_digits: 10, decimal_places: 2}
          - {name: customer, type: ForeignKey, to: Customer}
        many_to_many:
          - {name: items, to: Item}
      - name: Customer
        fields:
          - {name: user, type: OneToOneField, to: auth.User}
          - {name: referrer, type: ForeignKey, to: self, null: true}
      - name: Item
        fields:
          - {name: sku, type: SlugField}
        many_to_many:
          - {name: related, to: self}
      - name: Legacy
        managed: false
        fields:
          - {name: code, type: CharField, max_length: 8}
`

func shopIntrospector() *fakeIntrospector {
	return &fakeIntrospector{tables: map[string][]schema.LiveColumn{
		"auth_user": {
			col("id", "int(11)", false, "PRI"),
			col("username", "varchar(30)", false, "UNI"),
		},
		"shop_order": {
			col("id", "int(11)", false, "PRI"),
			col("total", "numeric(10,2)", false, ""),
		},
		"shop_item": {
			col("id", "int(11)", false, "PRI"),
			col("sku", "varchar(50)", false, "MUL"),
		},
		"shop_item_related": {},
	}}
}

func TestNewRejectsUnsupportedBackends(t *testing.T) {
	reg := mustRegistry(t, shopModels)
	b := creation.NewBuilder(&dialect.MysqlDialect{})

	_, err := New(Config{Backend: "postgres"}, shopIntrospector(), b, reg, nil)
	if !errors.Is(err, dialect.ErrUnsupportedBackend) {
		t.Errorf("expected ErrUnsupportedBackend, got %v", err)
	}
	_, err = New(Config{}, shopIntrospector(), b, reg, nil)
	if !errors.Is(err, dialect.ErrBackendNotConfigured) {
		t.Errorf("expected ErrBackendNotConfigured, got %v", err)
	}
}

func TestMissingTableGetsFullCreation(t *testing.T) {
	reg := mustRegistry(t, shopModels)
	in := shopIntrospector()
	fx := newTestFixer(t, reg, in, false)
	customer := model(t, reg, "shop.Customer")
	known := knownTables("auth_user", "shop_order", "shop_item")

	got, gotPending, err := fx.AlterTable(context.Background(), customer, known)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, wantPending, err := creation.NewBuilder(&dialect.MysqlDialect{}).CreateTable(customer, known)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalLines(t, got, want)
	if gotPending.Len() != wantPending.Len() {
		t.Errorf("expected %d pending references, got %d", wantPending.Len(), gotPending.Len())
	}
}

func TestUnmanagedModelIsSkipped(t *testing.T) {
	reg := mustRegistry(t, shopModels)
	in := shopIntrospector()
	fx := newTestFixer(t, reg, in, false)

	out, pending, err := fx.AlterTable(context.Background(), model(t, reg, "shop.Legacy"), knownTables())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 || pending.Len() != 0 {
		t.Errorf("expected nothing for unmanaged model, got %q", out)
	}
	if len(in.described) != 0 {
		t.Errorf("unmanaged table should not be described, got %v", in.described)
	}
}

func TestIntrospectionErrorIsFatal(t *testing.T) {
	reg := mustRegistry(t, shopModels)
	in := shopIntrospector()
	boom := errors.New("connection reset")
	in.describeErrs = map[string]error{"shop_customer": boom}
	fx := newTestFixer(t, reg, in, false)

	out, err := fx.FixApp(context.Background(), "shop", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected introspection error, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no partial output, got %q", out)
	}
}

func TestFixAppUnknownApp(t *testing.T) {
	fx := newTestFixer(t, mustRegistry(t, shopModels), shopIntrospector(), false)
	if _, err := fx.FixApp(context.Background(), "nope", nil); err == nil {
		t.Fatal("expected error for unknown app")
	}
}

func TestFixAppResolvesDeferredReferences(t *testing.T) {
	reg := mustRegistry(t, shopModels)
	fx := newTestFixer(t, reg, shopIntrospector(), false)

	var visited []string
	out, err := fx.FixApp(context.Background(), "shop", func(m *models.Model) {
		visited = append(visited, m.Name)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(visited, ",") != "Order,Customer,Item,Legacy" {
		t.Errorf("unexpected model order: %v", visited)
	}

	addCustomer := indexOf(out, func(s string) bool {
		return s == "ALTER TABLE `shop_order` ADD COLUMN `customer_id` integer NOT NULL;"
	})
	if addCustomer < 0 {
		t.Fatalf("expected customer_id to be added without inline reference:\n%s", strings.Join(out, "\n"))
	}
	createCustomer := indexOf(out, func(s string) bool { return strings.HasPrefix(s, "CREATE TABLE `shop_customer` (") })
	if createCustomer < addCustomer {
		t.Fatalf("expected shop_customer to be created after shop_order is altered")
	}
	if !strings.Contains(out[createCustomer], "`user_id` integer NOT NULL UNIQUE REFERENCES `auth_user` (`id`)") {
		t.Errorf("expected inline reference to the live auth_user table:\n%s", out[createCustomer])
	}
	if strings.Contains(out[createCustomer], "REFERENCES `shop_customer`") {
		t.Errorf("self reference must be deferred:\n%s", out[createCustomer])
	}

	orderFK := indexOf(out, func(s string) bool {
		return strings.HasPrefix(s, "ALTER TABLE `shop_order` ADD CONSTRAINT `customer_id_refs_id_") &&
			strings.HasSuffix(s, "FOREIGN KEY (`customer_id`) REFERENCES `shop_customer` (`id`);")
	})
	selfFK := indexOf(out, func(s string) bool {
		return strings.HasPrefix(s, "ALTER TABLE `shop_customer` ADD CONSTRAINT `referrer_id_refs_id_")
	})
	if orderFK < createCustomer || selfFK < createCustomer {
		t.Errorf("expected deferred constraints after CREATE TABLE shop_customer (create=%d order=%d self=%d)",
			createCustomer, orderFK, selfFK)
	}

	// Order's join table is new, Item's self relation already exists.
	if indexOf(out, func(s string) bool { return strings.HasPrefix(s, "CREATE TABLE `shop_order_items` (") }) < 0 {
		t.Errorf("expected join table shop_order_items")
	}
	if indexOf(out, func(s string) bool { return strings.Contains(s, "shop_item_related") }) >= 0 {
		t.Errorf("existing join table shop_item_related must not be touched")
	}

	// numeric(10,2) matches the declared numeric(10, 2); nothing else differs.
	for _, s := range out {
		if strings.Contains(s, "total") {
			t.Errorf("unexpected statement for total: %s", s)
		}
		if strings.HasPrefix(s, "-- ") {
			t.Errorf("unexpected notice: %s", s)
		}
	}
}

func TestFixAppReportsUnresolvedReferences(t *testing.T) {
	reg := mustRegistry(t, `
apps:
  - label: crm
    models:
      - name: Account
        fields:
          - {name: name, type: CharField, max_length: 40}
  - label: billing
    models:
      - name: Invoice
        fields:
          - {name: account, type: ForeignKey, to: crm.Account}
`)
	in := &fakeIntrospector{tables: map[string][]schema.LiveColumn{
		"billing_invoice": {col("id", "int(11)", false, "PRI")},
	}}
	fx := newTestFixer(t, reg, in, false)

	out, err := fx.FixApp(context.Background(), "billing", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := out[len(out)-1]
	if last != "-- Field Invoice.account references table crm_account, which is not created by this run" {
		t.Errorf("expected unresolved reference notice, got %q", last)
	}
	for _, s := range out {
		if strings.Contains(s, "FOREIGN KEY") {
			t.Errorf("no constraint expected for an unresolved target: %s", s)
		}
	}
}

func TestSortModelsDefersLess(t *testing.T) {
	reg := mustRegistry(t, shopModels)
	d := &dialect.MysqlDialect{}
	fx, err := New(Config{Backend: dialect.MySQL, SortModels: true}, shopIntrospector(), creation.NewBuilder(d), reg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var visited []string
	out, err := fx.FixApp(context.Background(), "shop", func(m *models.Model) {
		visited = append(visited, m.Name)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visited[0] != "Customer" {
		t.Errorf("expected Customer first when sorting, got %v", visited)
	}
	if indexOf(out, func(s string) bool {
		return s == "ALTER TABLE `shop_order` ADD COLUMN `customer_id` integer NOT NULL REFERENCES `shop_customer` (`id`);"
	}) < 0 {
		t.Errorf("expected inline reference once Customer is created first:\n%s", strings.Join(out, "\n"))
	}
}

func TestNewManyToManyTables(t *testing.T) {
	reg := mustRegistry(t, shopModels)
	fx := newTestFixer(t, reg, shopIntrospector(), false)
	order := model(t, reg, "shop.Order")

	out, err := fx.NewManyToManyTables(order, knownTables("shop_order_items"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("existing join table should produce nothing, got %q", out)
	}

	out, err = fx.NewManyToManyTables(order, knownTables())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected CREATE TABLE and two constraints, got %q", out)
	}

	// Neither side managed: nothing to do.
	order.Managed = false
	order.ManyToMany[0].Model.Managed = false
	out, err = fx.NewManyToManyTables(order, knownTables())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected nothing when neither side is managed, got %q", out)
	}
}
