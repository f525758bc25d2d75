// Package dataprocessing reads the external inputs of a run: the raw engine
// log exports and the spreadsheet lookup tables.
//
// # Raw logs
//
// Engine loggers export one CSV per asset, UTF-16LE with a byte order mark.
// ReadLog decodes UTF-16 (either byte order, with BOM) and UTF-8 and returns
// a table in which every column is text; typing happens later in cleaning.
//
// # Workbooks
//
// The lookup tables live in .xlsx workbooks read with excelize:
//
//	ASSET_INFO.xlsx         ASSET_LIST       Serial, Model
//	ConfigScript.xlsx       ListaParm        SN, Nome da coluna, Renomear para
//	                        DadosInvalidos   readings denylist (first column)
//	                        AlertasDelete    events denylist (first column)
//	                        CaminhosComuns   Nome, Caminho
//	maintenance plan        By Model         Model, Maintenance Name, Maintenance Type,
//	                                         Target SMH, Target Fuel (L)
//	MAINTENANCE_SHIFT.xlsx  By SN            SN, Maintenance Name, Run Hours,
//	                                         Total Fuel (L), Date
//
// Headers are matched after trimming surrounding whitespace. A missing
// required header is a schema error naming the workbook and sheet.
package dataprocessing
