// import_csv carga lotes desde una planilla CSV en uno de los locales, con el mismo camino
// que la importación de la API: cada fila válida genera su registro adicao y el lote cierra
// con un registro adicao_leva.
//
// Uso: go run ./cmd/import_csv -file compras.csv -local vet -email admin@clinica.vet [-dry-run]
// Sin -mapping se usa el auto-mapeo de encabezados; -mapping acepta campo=Encabezado separados por coma.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/csvimport"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/docstore"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-vet/pkg/config"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

func main() {
	file := flag.String("file", "", "ruta del CSV")
	location := flag.String("local", "principal", "local destino (principal, vet, internacao, reposicao)")
	email := flag.String("email", "", "email del usuario que firma los registros")
	rawMapping := flag.String("mapping", "", "campo=Encabezado,... (opcional)")
	dryRun := flag.Bool("dry-run", false, "sólo muestra la vista previa")
	flag.Parse()

	if *file == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import_csv"})

	f, err := os.Open(*file)
	if err != nil {
		fail("abrir CSV", err)
	}
	defer f.Close()

	table, err := csvimport.Parse(f)
	if err != nil {
		fail("leer CSV", err)
	}

	mapping := inventory.SuggestMapping(table.Headers)
	if *rawMapping != "" {
		mapping, err = parseMapping(*rawMapping)
		if err != nil {
			fail("mapping", err)
		}
	}
	fmt.Printf("Encabezados: %s\n", strings.Join(table.Headers, " | "))
	for _, field := range inventory.ImportFields {
		if h, ok := mapping[field]; ok {
			fmt.Printf("  %-15s <- %s\n", field, h)
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL", err)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		fail("crear esquema", err)
	}
	store := postgres.NewDocumentStore(pool)

	user, err := docstore.NewUserRepository(store).FindByEmail(ctx, *email)
	if err != nil {
		fail("buscar usuario", err)
	}
	if user == nil {
		fail("buscar usuario", fmt.Errorf("no existe %s", *email))
	}
	actor := entity.Actor{UserID: user.ID, Email: user.Email, Role: user.Role}

	writer := activity.NewWriter(store, cfg.App.Location(), log)
	products := inventory.NewProductUseCase(inv.DefaultCatalog(), store, writer, cfg.App.LowStockThreshold)
	uc := inventory.NewImportUseCase(products, nil, log)

	if *dryRun {
		for _, r := range uc.Preview(table.Rows, mapping) {
			if r.Err != nil {
				fmt.Printf("línea %d: %s\n", r.Line, inventory.RowErrorMessage(r.Err))
				continue
			}
			fmt.Printf("línea %d: %s x%d (%s)\n", r.Line, r.Product.Nome, r.Product.Quantidade, r.Product.Categoria)
		}
		return
	}

	res, err := uc.Import(ctx, actor, *location, filepath.Base(*file), table.Rows, mapping)
	if res != nil {
		for _, r := range res.Failed {
			fmt.Printf("línea %d: %s\n", r.Line, inventory.RowErrorMessage(r.Err))
		}
		fmt.Printf("Importados %d de %d en %s\n", len(res.Imported), res.Total, res.Location)
		if !res.Log.OK() {
			fmt.Fprintf(os.Stderr, "Aviso: registro de la importación no guardado: %v\n", res.Log.Err)
		}
	}
	if err != nil {
		fail("importar", err)
	}
}

func parseMapping(s string) (inventory.Mapping, error) {
	m := inventory.Mapping{}
	for _, pair := range strings.Split(s, ",") {
		field, header, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("par inválido %q", pair)
		}
		m[strings.TrimSpace(field)] = strings.TrimSpace(header)
	}
	return m, nil
}

func fail(op string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
	os.Exit(1)
}
