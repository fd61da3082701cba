// Package repository define las entidades persistidas y los contratos de
// acceso a datos. Los métodos de lectura que tocan datos de tenant reciben un
// authz.Scope ya construido; el store lo compone via AND con sus propios
// filtros y nunca lo reemplaza. Las implementaciones viven en store/pg.
package repository
